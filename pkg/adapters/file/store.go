package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/nody/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Extensions lists the document formats read by the store, in lookup order.
var Extensions = []string{".yaml", ".yml", ".json"}

// Store implements ports.GraphStore on a directory of graph documents.
// Each document lives in <id>.yaml, <id>.yml or <id>.json; documents are
// written as YAML.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to "graphs".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = "graphs"
	}
	return &Store{BasePath: basePath}
}

// LoadGraph reads and decodes the document with the given id.
func (s *Store) LoadGraph(ctx context.Context, id string) (*domain.GraphDocument, error) {
	if id == "" {
		return nil, fmt.Errorf("graph id cannot be empty")
	}

	for _, ext := range Extensions {
		path := filepath.Join(s.BasePath, id+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read graph file: %w", err)
		}
		doc, err := Decode(data, ext)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if doc.ID == "" {
			doc.ID = id
		}
		return doc, nil
	}
	return nil, fmt.Errorf("graph %q in %s: %w", id, s.BasePath, domain.ErrGraphNotFound)
}

// Decode parses a document in the format implied by ext (".json" or YAML).
func Decode(data []byte, ext string) (*domain.GraphDocument, error) {
	var doc domain.GraphDocument
	if ext == ".json" {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
		}
		return &doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	return &doc, nil
}

// SaveGraph writes the document as YAML atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) SaveGraph(ctx context.Context, doc *domain.GraphDocument) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("graph document missing ID")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure graph directory: %w", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+doc.ID+"-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Older copies in other formats would shadow or duplicate the new one.
	if err := s.remove(doc.ID); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, filepath.Join(s.BasePath, doc.ID+".yaml")); err != nil {
		return fmt.Errorf("failed to rename temp file to graph: %w", err)
	}
	return nil
}

// DeleteGraph removes every file holding the document.
func (s *Store) DeleteGraph(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("graph id cannot be empty")
	}
	return s.remove(id)
}

func (s *Store) remove(id string) error {
	for _, ext := range Extensions {
		err := os.Remove(filepath.Join(s.BasePath, id+ext))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete graph file: %w", err)
		}
	}
	return nil
}

// ListGraphs returns the ids of all documents in the directory.
func (s *Store) ListGraphs(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}

	seen := make(map[string]bool)
	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ext := filepath.Ext(name)
		if !isDocument(ext) {
			continue
		}
		id := strings.TrimSuffix(name, ext)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func isDocument(ext string) bool {
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
