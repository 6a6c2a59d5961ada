package ports

import (
	"context"

	"github.com/aretw0/nody/pkg/domain"
)

// GraphStore is a GraphLoader that can also persist documents.
type GraphStore interface {
	GraphLoader

	// SaveGraph stores doc under doc.ID, replacing any previous version.
	SaveGraph(ctx context.Context, doc *domain.GraphDocument) error

	// DeleteGraph removes a document. Deleting a missing id is not an error.
	DeleteGraph(ctx context.Context, id string) error
}
