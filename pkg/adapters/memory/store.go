package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/nody/pkg/domain"
)

// Store implements ports.GraphStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// NewFromDocuments creates a store holding the given documents.
// This improves DX for tests and examples.
func NewFromDocuments(docs ...*domain.GraphDocument) (*Store, error) {
	s := NewStore()
	for _, d := range docs {
		if err := s.SaveGraph(context.Background(), d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SaveGraph stores a copy of the document.
func (s *Store) SaveGraph(ctx context.Context, doc *domain.GraphDocument) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("graph document missing ID")
	}
	// Serialized copy, so callers cannot mutate stored documents.
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal graph %s: %w", doc.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[doc.ID] = data
	return nil
}

// LoadGraph returns a fresh copy of the stored document.
func (s *Store) LoadGraph(ctx context.Context, id string) (*domain.GraphDocument, error) {
	s.mu.RLock()
	data, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("graph %q: %w", id, domain.ErrGraphNotFound)
	}

	var doc domain.GraphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph %s: %w", id, err)
	}
	return &doc, nil
}

// DeleteGraph removes the document.
func (s *Store) DeleteGraph(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// ListGraphs returns all document ids.
func (s *Store) ListGraphs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids) // Deterministic order
	return ids, nil
}
