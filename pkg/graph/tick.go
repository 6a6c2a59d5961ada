package graph

import (
	"fmt"
	"time"

	"github.com/aretw0/nody/pkg/domain"
)

// Phase identifies the per-frame callback being forwarded.
type Phase string

const (
	PhaseUpdate      Phase = "update"
	PhaseFixedUpdate Phase = "fixed_update"
	PhaseLateUpdate  Phase = "late_update"
)

// Tick is delivered to node handlers.
type Tick struct {
	Phase Phase
	Delta time.Duration
}

// TickFunc is a per-node tick handler. It runs while its node is the active
// node or an active global node, and may drive traversal through g
// (typically with Continue).
type TickFunc func(g *Graph, n *Node, t Tick)

// SetHandler registers fn for the node with the given id. A nil fn removes
// the handler.
func (g *Graph) SetHandler(nodeID string, fn TickFunc) error {
	if g.index[nodeID] == nil {
		return fmt.Errorf("set handler for %q: %w", nodeID, domain.ErrNodeNotFound)
	}
	if fn == nil {
		delete(g.handlers, nodeID)
		return nil
	}
	g.handlers[nodeID] = fn
	return nil
}

// Update forwards a frame update.
func (g *Graph) Update(dt time.Duration) {
	g.tick(Tick{Phase: PhaseUpdate, Delta: dt})
}

// FixedUpdate forwards a fixed-step update.
func (g *Graph) FixedUpdate(dt time.Duration) {
	g.tick(Tick{Phase: PhaseFixedUpdate, Delta: dt})
}

// LateUpdate forwards a late update.
func (g *Graph) LateUpdate(dt time.Duration) {
	g.tick(Tick{Phase: PhaseLateUpdate, Delta: dt})
}

// tick delivers t to the active node, then the active global nodes, then the
// running sub graph.
func (g *Graph) tick(t Tick) {
	if !g.enabled {
		return
	}

	active := g.ActiveNode()
	if active != nil {
		g.dispatch(active, t)
	}
	for _, n := range g.ActiveGlobalNodes() {
		if active != nil && n.ID == active.ID {
			continue
		}
		g.dispatch(n, t)
	}
	if child := g.activeSubGraph; child != nil {
		child.tick(t)
	}
}

func (g *Graph) dispatch(n *Node, t Tick) {
	if fn, ok := g.handlers[n.ID]; ok {
		fn(g, n, t)
	}
}
