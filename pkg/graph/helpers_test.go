package graph_test

import (
	"testing"

	"github.com/aretw0/nody/pkg/domain"
	"github.com/aretw0/nody/pkg/graph"
	"github.com/stretchr/testify/require"
)

func addNode(t *testing.T, g *graph.Graph, typ domain.NodeType, name string) *graph.Node {
	t.Helper()
	n, err := g.AddNode(typ, name)
	require.NoError(t, err)
	return n
}

func connect(t *testing.T, g *graph.Graph, out, in *graph.Socket) *graph.Connection {
	t.Helper()
	c, err := g.Connect(out, in)
	require.NoError(t, err)
	return c
}

// recorder collects lifecycle events as "kind:name" strings.
type recorder struct {
	events []string
	loops  []*domain.LoopEvent
	subs   []*domain.SubGraphEvent
}

func (r *recorder) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeActivated: func(e *domain.NodeEvent) {
			r.events = append(r.events, "enter:"+e.NodeName)
		},
		OnNodeDeactivated: func(e *domain.NodeEvent) {
			r.events = append(r.events, "exit:"+e.NodeName)
		},
		OnSubGraphChanged: func(e *domain.SubGraphEvent) {
			r.subs = append(r.subs, e)
		},
		OnLoopDetected: func(e *domain.LoopEvent) {
			r.loops = append(r.loops, e)
		},
	}
}
