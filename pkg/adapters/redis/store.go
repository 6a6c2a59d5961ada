package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/nody/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces the keys written by the store.
const DefaultPrefix = "nody:graph:"

// Store implements ports.GraphStore using Redis.
// Documents are stored as JSON strings under <prefix>doc:<id>; the set
// <prefix>index holds the known ids, outside the document keyspace.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix for documents.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(id string) string {
	return s.prefix + "doc:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// SaveGraph persists the document to Redis.
func (s *Store) SaveGraph(ctx context.Context, doc *domain.GraphDocument) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("graph document missing ID")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(doc.ID), data, 0)
	pipe.SAdd(ctx, s.indexKey(), doc.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// LoadGraph retrieves the document from Redis.
func (s *Store) LoadGraph(ctx context.Context, id string) (*domain.GraphDocument, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("graph %q: %w", id, domain.ErrGraphNotFound)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var doc domain.GraphDocument
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	return &doc, nil
}

// DeleteGraph removes the document and its index entry.
func (s *Store) DeleteGraph(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.SRem(ctx, s.indexKey(), id)

	_, err := pipe.Exec(ctx)
	return err
}

// ListGraphs returns the indexed ids, sorted.
func (s *Store) ListGraphs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
