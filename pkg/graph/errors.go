package graph

import (
	"fmt"

	"github.com/aretw0/nody/pkg/domain"
)

// LoopError reports a traversal drain that exceeded its hop budget.
type LoopError struct {
	GraphID string
	// NodeID is the node left active when the drain was aborted.
	NodeID string
	Hops   int
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("graph %s: traversal aborted at node %s after %d hops", e.GraphID, e.NodeID, e.Hops)
}

func (e *LoopError) Unwrap() error {
	return domain.ErrTraversalLoop
}
