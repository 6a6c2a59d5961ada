package graph_test

import (
	"errors"
	"testing"

	"github.com/aretw0/nody/pkg/domain"
	"github.com/aretw0/nody/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraversal_PassThrough(t *testing.T) {
	rec := &recorder{}
	g := graph.New("root", graph.WithLifecycleHooks(rec.hooks()))
	start := addNode(t, g, domain.NodeTypeStart, "")
	menu := addNode(t, g, domain.NodeTypeGeneral, "Menu")
	connect(t, g, start.Output(0), menu.Input(0))

	require.NoError(t, g.ActivateStartOrEnterNode())

	assert.Same(t, menu, g.ActiveNode())
	assert.Equal(t, []*graph.Node{menu}, g.Path())
	assert.Equal(t, []string{"enter:Start", "exit:Start", "enter:Menu"}, rec.events,
		"the outgoing node is exited before the next one is entered")
}

func TestTraversal_OrphanStart(t *testing.T) {
	g := graph.New("root")
	addNode(t, g, domain.NodeTypeStart, "")
	addNode(t, g, domain.NodeTypeGeneral, "Unreachable")

	err := g.ActivateStartOrEnterNode()

	require.NoError(t, err)
	assert.Nil(t, g.ActiveNode(), "graph is inert")
}

func TestTraversal_SingleActiveNode(t *testing.T) {
	g := graph.New("root")
	a := addNode(t, g, domain.NodeTypeGeneral, "A")
	b := addNode(t, g, domain.NodeTypeGeneral, "B")

	active := 0
	g2 := graph.New("counted", graph.WithLifecycleHooks(domain.LifecycleHooks{
		OnNodeActivated:   func(e *domain.NodeEvent) { active++ },
		OnNodeDeactivated: func(e *domain.NodeEvent) { active-- },
	}))
	x := addNode(t, g2, domain.NodeTypeGeneral, "X")
	y := addNode(t, g2, domain.NodeTypeGeneral, "Y")

	for _, step := range []*graph.Node{x, y, y, x, y} {
		require.NoError(t, g2.SetActiveNode(step, nil))
		assert.Equal(t, 1, active)
		assert.Same(t, step, g2.ActiveNode())
	}

	require.NoError(t, g.SetActiveNodeByName("B"))
	assert.Same(t, b, g.ActiveNode())
	require.NoError(t, g.SetActiveNodeByID(a.ID))
	assert.Same(t, a, g.ActiveNode())
}

func TestTraversal_LookupErrors(t *testing.T) {
	g := graph.New("root")
	other := graph.New("other")
	foreign := addNode(t, other, domain.NodeTypeGeneral, "X")

	assert.ErrorIs(t, g.SetActiveNode(nil, nil), domain.ErrNodeNotFound)
	assert.ErrorIs(t, g.SetActiveNode(foreign, nil), domain.ErrNodeNotInGraph)
	assert.ErrorIs(t, g.SetActiveNodeByID("nope"), domain.ErrNodeNotFound)
	assert.ErrorIs(t, g.SetActiveNodeByName("nope"), domain.ErrNodeNotFound)
	assert.ErrorIs(t, g.ActivateStartOrEnterNode(), domain.ErrNoEntryNode)
}

func TestTraversal_ByConnection(t *testing.T) {
	var via string
	g := graph.New("root", graph.WithLifecycleHooks(domain.LifecycleHooks{
		OnNodeActivated: func(e *domain.NodeEvent) { via = e.ConnectionID },
	}))
	a := addNode(t, g, domain.NodeTypeGeneral, "A")
	b := addNode(t, g, domain.NodeTypeGeneral, "B")
	c := connect(t, g, a.Output(0), b.Input(0))

	require.NoError(t, g.SetActiveNodeByConnection(c))
	assert.Same(t, b, g.ActiveNode())
	assert.Equal(t, c.ID, via)

	g.Disconnect(c)
	assert.ErrorIs(t, g.SetActiveNodeByConnection(c), domain.ErrNodeNotInGraph)
	assert.ErrorIs(t, g.SetActiveNodeByConnection(nil), domain.ErrSocketNotFound)
}

func TestTraversal_Continue(t *testing.T) {
	var via []string
	g := graph.New("root", graph.WithLifecycleHooks(domain.LifecycleHooks{
		OnNodeActivated: func(e *domain.NodeEvent) { via = append(via, e.ConnectionID) },
	}))
	menu := addNode(t, g, domain.NodeTypeGeneral, "Menu")
	play := addNode(t, g, domain.NodeTypeGeneral, "Play")
	opts := addNode(t, g, domain.NodeTypeGeneral, "Options")
	second, err := g.AddOutput(menu, "Options", "")
	require.NoError(t, err)
	connect(t, g, menu.Output(0), play.Input(0))
	c := connect(t, g, second, opts.Input(0))

	require.NoError(t, g.SetActiveNode(menu, nil))
	require.NoError(t, g.Continue(menu, 1))
	assert.Same(t, opts, g.ActiveNode())
	assert.Equal(t, []string{"", c.ID}, via)

	// Unconnected output: stay put.
	require.NoError(t, g.Continue(opts, 0))
	assert.Same(t, opts, g.ActiveNode())

	assert.ErrorIs(t, g.Continue(menu, 7), domain.ErrSocketNotFound)
	assert.ErrorIs(t, g.Continue(nil, 0), domain.ErrNodeNotInGraph)
}

func TestTraversal_GlobalNodes(t *testing.T) {
	var globals []string
	g := graph.New("root", graph.WithLifecycleHooks(domain.LifecycleHooks{
		OnNodeActivated: func(e *domain.NodeEvent) {
			if e.Global {
				globals = append(globals, e.NodeName)
			}
		},
	}))
	start := addNode(t, g, domain.NodeTypeStart, "")
	menu := addNode(t, g, domain.NodeTypeGeneral, "Menu")
	hud := addNode(t, g, domain.NodeTypeGeneral, "HUD")
	hud.Global = true
	connect(t, g, start.Output(0), menu.Input(0))

	require.NoError(t, g.ActivateStartOrEnterNode())

	assert.Same(t, menu, g.ActiveNode())
	assert.Equal(t, []*graph.Node{hud}, g.ActiveGlobalNodes())
	assert.Equal(t, []string{"HUD"}, globals)

	// Activating again does not re-emit for already active globals.
	g.ActivateGlobalNodes()
	assert.Equal(t, []string{"HUD"}, globals)

	g.DeactivateGlobalNodes()
	assert.Empty(t, g.ActiveGlobalNodes())
	assert.Same(t, menu, g.ActiveNode(), "globals are independent of the active node")
}

func TestTraversal_LoopGuard(t *testing.T) {
	rec := &recorder{}
	hooks := rec.hooks()
	root := graph.New("root", graph.WithMaxHops(50), graph.WithLifecycleHooks(hooks))
	start := addNode(t, root, domain.NodeTypeStart, "")
	sub := addNode(t, root, domain.NodeTypeSubGraph, "Loop")
	connect(t, root, start.Output(0), sub.Input(0))
	connect(t, root, sub.Output(0), sub.Input(0))

	child := graph.New("child", graph.AsSubGraph())
	enter := addNode(t, child, domain.NodeTypeEnter, "")
	exit := addNode(t, child, domain.NodeTypeExit, "")
	connect(t, child, enter.Output(0), exit.Input(0))
	require.NoError(t, root.SetSubGraph(sub, child))

	err := root.ActivateStartOrEnterNode()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTraversalLoop)
	var loopErr *graph.LoopError
	require.True(t, errors.As(err, &loopErr))
	assert.Equal(t, 50, loopErr.Hops)
	require.Len(t, rec.loops, 1)
	assert.Equal(t, 50, rec.loops[0].Hops)
	assert.Same(t, sub, root.ActiveNode(), "the last activated node stays active")

	// The graph remains usable after an aborted drain.
	root.Disable()
	assert.Nil(t, root.ActiveNode())
	assert.Nil(t, root.ActiveSubGraph())
	assert.Nil(t, child.Parent())
}

func TestTraversal_ReentrantHook(t *testing.T) {
	var g *graph.Graph
	var b *graph.Node
	var order []string
	g = graph.New("root", graph.WithLifecycleHooks(domain.LifecycleHooks{
		OnNodeActivated: func(e *domain.NodeEvent) {
			order = append(order, e.NodeName)
			if e.NodeName == "A" {
				// Queued behind the running drain rather than recursing.
				require.NoError(t, g.SetActiveNode(b, nil))
				order = append(order, "queued")
			}
		},
	}))
	a := addNode(t, g, domain.NodeTypeGeneral, "A")
	b = addNode(t, g, domain.NodeTypeGeneral, "B")

	require.NoError(t, g.SetActiveNode(a, nil))

	assert.Same(t, b, g.ActiveNode())
	assert.Equal(t, []string{"A", "queued", "B"}, order)
}

func TestDisable(t *testing.T) {
	g := graph.New("root")
	start := addNode(t, g, domain.NodeTypeStart, "")
	menu := addNode(t, g, domain.NodeTypeGeneral, "Menu")
	hud := addNode(t, g, domain.NodeTypeGeneral, "HUD")
	hud.Global = true
	connect(t, g, start.Output(0), menu.Input(0))
	require.NoError(t, g.ActivateStartOrEnterNode())

	g.Disable()

	assert.False(t, g.Enabled())
	assert.Nil(t, g.ActiveNode())
	assert.Empty(t, g.ActiveGlobalNodes())

	require.NoError(t, g.ActivateStartOrEnterNode())
	assert.True(t, g.Enabled())
	assert.Same(t, menu, g.ActiveNode())
}
