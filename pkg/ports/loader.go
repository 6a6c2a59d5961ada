package ports

import (
	"context"

	"github.com/aretw0/nody/pkg/domain"
)

// GraphLoader defines how the compiler retrieves graph documents.
type GraphLoader interface {
	// LoadGraph retrieves a graph document by id.
	// Returns domain.ErrGraphNotFound if the document does not exist.
	LoadGraph(ctx context.Context, id string) (*domain.GraphDocument, error)

	// ListGraphs returns the ids of all available documents, sorted.
	// This is used by introspection tools (e.g. 'nody validate --all').
	ListGraphs(ctx context.Context) ([]string, error)
}
