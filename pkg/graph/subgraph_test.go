package graph_test

import (
	"testing"

	"github.com/aretw0/nody/pkg/domain"
	"github.com/aretw0/nody/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newChild builds Enter -> [General "Inside" ->] Exit.
func newChild(t *testing.T, wait bool) (*graph.Graph, *graph.Node) {
	t.Helper()
	child := graph.New("child", graph.AsSubGraph())
	enter := addNode(t, child, domain.NodeTypeEnter, "")
	exit := addNode(t, child, domain.NodeTypeExit, "")
	if !wait {
		connect(t, child, enter.Output(0), exit.Input(0))
		return child, nil
	}
	inside := addNode(t, child, domain.NodeTypeGeneral, "Inside")
	connect(t, child, enter.Output(0), inside.Input(0))
	connect(t, child, inside.Output(0), exit.Input(0))
	return child, inside
}

func TestSubGraph_Return(t *testing.T) {
	rec := &recorder{}
	root := graph.New("root", graph.WithLifecycleHooks(rec.hooks()))
	start := addNode(t, root, domain.NodeTypeStart, "")
	sub := addNode(t, root, domain.NodeTypeSubGraph, "")
	after := addNode(t, root, domain.NodeTypeGeneral, "After")
	connect(t, root, start.Output(0), sub.Input(0))
	connect(t, root, sub.Output(0), after.Input(0))

	child, _ := newChild(t, false)
	require.NoError(t, root.SetSubGraph(sub, child))

	require.NoError(t, root.ActivateStartOrEnterNode())

	assert.Same(t, after, root.ActiveNode())
	assert.Nil(t, root.ActiveSubGraph())
	assert.Nil(t, child.Parent())
	assert.Nil(t, child.ParentNode())
	assert.Nil(t, child.ActiveSubGraph())
	assert.Nil(t, child.ActiveNode())
	assert.False(t, child.Enabled())

	require.Len(t, rec.subs, 2)
	assert.Equal(t, child.ID, rec.subs[0].SubGraphID)
	assert.Equal(t, sub.ID, rec.subs[0].NodeID)
	assert.Empty(t, rec.subs[1].SubGraphID, "second event clears the sub graph")
}

func TestSubGraph_Waiting(t *testing.T) {
	root := graph.New("root")
	start := addNode(t, root, domain.NodeTypeStart, "")
	sub := addNode(t, root, domain.NodeTypeSubGraph, "")
	after := addNode(t, root, domain.NodeTypeGeneral, "After")
	connect(t, root, start.Output(0), sub.Input(0))
	connect(t, root, sub.Output(0), after.Input(0))

	child, inside := newChild(t, true)
	require.NoError(t, root.SetSubGraph(sub, child))
	require.NoError(t, root.ActivateStartOrEnterNode())

	assert.Same(t, sub, root.ActiveNode())
	assert.Same(t, child, root.ActiveSubGraph())
	assert.Same(t, root, child.Parent())
	assert.Same(t, sub, child.ParentNode())
	assert.True(t, child.Enabled())
	assert.Equal(t, []*graph.Node{sub, inside}, root.Path())

	// The host continues inside the child; the Exit hands control back.
	require.NoError(t, child.Continue(inside, 0))

	assert.Same(t, after, root.ActiveNode())
	assert.Nil(t, root.ActiveSubGraph())
	assert.Nil(t, child.Parent())
}

func TestSubGraph_ForcedLeave(t *testing.T) {
	root := graph.New("root")
	start := addNode(t, root, domain.NodeTypeStart, "")
	sub := addNode(t, root, domain.NodeTypeSubGraph, "")
	menu := addNode(t, root, domain.NodeTypeGeneral, "Menu")
	connect(t, root, start.Output(0), sub.Input(0))

	child, _ := newChild(t, true)
	require.NoError(t, root.SetSubGraph(sub, child))
	require.NoError(t, root.ActivateStartOrEnterNode())
	require.Same(t, child, root.ActiveSubGraph())

	require.NoError(t, root.SetActiveNode(menu, nil))

	assert.Same(t, menu, root.ActiveNode())
	assert.Nil(t, root.ActiveSubGraph())
	assert.Nil(t, child.Parent())
	assert.Nil(t, child.ActiveNode())
	assert.False(t, child.Enabled())
}

func TestSubGraph_DanglingOutput(t *testing.T) {
	root := graph.New("root")
	start := addNode(t, root, domain.NodeTypeStart, "")
	sub := addNode(t, root, domain.NodeTypeSubGraph, "")
	connect(t, root, start.Output(0), sub.Input(0))

	child, _ := newChild(t, false)
	require.NoError(t, root.SetSubGraph(sub, child))
	require.NoError(t, root.ActivateStartOrEnterNode())

	assert.Same(t, sub, root.ActiveNode(), "stays at the sub graph node")
	assert.Nil(t, root.ActiveSubGraph())
	assert.Nil(t, child.Parent())
}

func TestSubGraph_BrokenReference(t *testing.T) {
	t.Run("No graph", func(t *testing.T) {
		root := graph.New("root")
		start := addNode(t, root, domain.NodeTypeStart, "")
		sub := addNode(t, root, domain.NodeTypeSubGraph, "")
		connect(t, root, start.Output(0), sub.Input(0))

		require.NoError(t, root.ActivateStartOrEnterNode())

		assert.Same(t, sub, root.ActiveNode())
		assert.True(t, sub.Errors.NoGraphReferenced)
		assert.Nil(t, root.ActiveSubGraph())
	})

	t.Run("Not a sub graph", func(t *testing.T) {
		root := graph.New("root")
		sub := addNode(t, root, domain.NodeTypeSubGraph, "")
		other := graph.New("other")
		addNode(t, other, domain.NodeTypeStart, "")
		require.NoError(t, root.SetSubGraph(sub, other))

		require.NoError(t, root.SetActiveNode(sub, nil))

		assert.Same(t, sub, root.ActiveNode())
		assert.True(t, sub.Errors.ReferencedGraphIsNotSubGraph)
		assert.Nil(t, other.Parent())
	})

	t.Run("No enter node", func(t *testing.T) {
		root := graph.New("root")
		sub := addNode(t, root, domain.NodeTypeSubGraph, "")
		child := graph.New("child", graph.AsSubGraph())
		addNode(t, child, domain.NodeTypeExit, "")
		require.NoError(t, root.SetSubGraph(sub, child))

		require.NoError(t, root.SetActiveNode(sub, nil))

		assert.Same(t, sub, root.ActiveNode())
		assert.True(t, sub.Errors.NoEnterNode)
	})

	t.Run("Self reference", func(t *testing.T) {
		root := graph.New("root")
		sub := addNode(t, root, domain.NodeTypeSubGraph, "")
		assert.ErrorIs(t, root.SetSubGraph(sub, root), domain.ErrRecursiveSubGraph)
	})
}

func TestSubGraph_Nested(t *testing.T) {
	root := graph.New("root")
	start := addNode(t, root, domain.NodeTypeStart, "")
	outer := addNode(t, root, domain.NodeTypeSubGraph, "Outer")
	done := addNode(t, root, domain.NodeTypeGeneral, "Done")
	connect(t, root, start.Output(0), outer.Input(0))
	connect(t, root, outer.Output(0), done.Input(0))

	mid := graph.New("mid", graph.AsSubGraph())
	midEnter := addNode(t, mid, domain.NodeTypeEnter, "")
	inner := addNode(t, mid, domain.NodeTypeSubGraph, "Inner")
	midExit := addNode(t, mid, domain.NodeTypeExit, "")
	connect(t, mid, midEnter.Output(0), inner.Input(0))
	connect(t, mid, inner.Output(0), midExit.Input(0))
	require.NoError(t, root.SetSubGraph(outer, mid))

	leaf, waiting := newChild(t, true)
	require.NoError(t, mid.SetSubGraph(inner, leaf))

	require.NoError(t, root.ActivateStartOrEnterNode())
	assert.Equal(t, []*graph.Node{outer, inner, waiting}, root.Path())

	require.NoError(t, leaf.Continue(waiting, 0))

	assert.Same(t, done, root.ActiveNode())
	assert.Nil(t, root.ActiveSubGraph())
	assert.Nil(t, mid.Parent())
	assert.Nil(t, leaf.Parent())
	assert.Nil(t, mid.ActiveSubGraph())
}

func TestSubGraph_DisableChild(t *testing.T) {
	root := graph.New("root")
	start := addNode(t, root, domain.NodeTypeStart, "")
	sub := addNode(t, root, domain.NodeTypeSubGraph, "")
	connect(t, root, start.Output(0), sub.Input(0))
	child, _ := newChild(t, true)
	require.NoError(t, root.SetSubGraph(sub, child))
	require.NoError(t, root.ActivateStartOrEnterNode())

	child.Disable()

	assert.Nil(t, root.ActiveSubGraph())
	assert.Same(t, sub, root.ActiveNode())
	assert.Nil(t, child.Parent())
	assert.False(t, child.Enabled())
}

func TestExit_WithoutParent(t *testing.T) {
	child, _ := newChild(t, false)

	require.NoError(t, child.ActivateStartOrEnterNode())

	assert.Same(t, child.ExitNode(), child.ActiveNode())
}

func TestSubGraph_ReplaceRunningChild(t *testing.T) {
	root := graph.New("root")
	start := addNode(t, root, domain.NodeTypeStart, "")
	sub := addNode(t, root, domain.NodeTypeSubGraph, "")
	after := addNode(t, root, domain.NodeTypeGeneral, "After")
	menu := addNode(t, root, domain.NodeTypeGeneral, "Menu")
	connect(t, root, start.Output(0), sub.Input(0))
	connect(t, root, sub.Output(0), after.Input(0))

	old, inside := newChild(t, true)
	require.NoError(t, root.SetSubGraph(sub, old))
	require.NoError(t, root.ActivateStartOrEnterNode())
	require.Same(t, old, root.ActiveSubGraph())

	fresh, _ := newChild(t, true)
	require.NoError(t, root.SetSubGraph(sub, fresh))

	assert.Nil(t, root.ActiveSubGraph())
	assert.Nil(t, old.Parent())
	assert.Nil(t, old.ParentNode())
	assert.False(t, old.Enabled())
	assert.Nil(t, old.ActiveNode())

	require.NoError(t, root.SetActiveNode(menu, nil))

	// The replaced child no longer drives the parent.
	require.NoError(t, old.Continue(inside, 0))
	assert.Same(t, menu, root.ActiveNode())
}
