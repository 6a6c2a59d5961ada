package controller_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/nody/pkg/controller"
	"github.com/aretw0/nody/pkg/domain"
	"github.com/aretw0/nody/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// menuGraph builds Start -> Menu -> Play, plus an unconnected Credits node.
func menuGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New("menu")
	start, err := g.AddNodeWithID("start", domain.NodeTypeStart, "")
	require.NoError(t, err)
	menu, err := g.AddNodeWithID("menu", domain.NodeTypeGeneral, "Menu")
	require.NoError(t, err)
	play, err := g.AddNodeWithID("play", domain.NodeTypeGeneral, "Play")
	require.NoError(t, err)
	_, err = g.AddNodeWithID("credits", domain.NodeTypeGeneral, "Credits")
	require.NoError(t, err)
	_, err = g.Connect(start.Output(0), menu.Input(0))
	require.NoError(t, err)
	_, err = g.Connect(menu.Output(0), play.Input(0))
	require.NoError(t, err)
	return g
}

func TestController_DeferredStart(t *testing.T) {
	c := controller.New(menuGraph(t))
	require.NoError(t, c.Err())

	st := c.Status()
	assert.True(t, st.Enabled)
	assert.False(t, st.Started)
	assert.Empty(t, st.Path, "nothing is active before the first tick")

	require.NoError(t, c.Tick(16*time.Millisecond))

	st = c.Status()
	assert.True(t, st.Started)
	active, ok := st.Active()
	require.True(t, ok)
	assert.Equal(t, "Menu", active.Name)
	assert.Equal(t, uint64(1), st.Ticks)
}

func TestController_InitFailures(t *testing.T) {
	emptyGraph := graph.New("empty")

	noStart := graph.New("no-start")
	_, err := noStart.AddNode(domain.NodeTypeGeneral, "Alone")
	require.NoError(t, err)

	unresolved := graph.New("unresolved")
	_, err = unresolved.AddNode(domain.NodeTypeStart, "")
	require.NoError(t, err)
	_, err = unresolved.AddNode(domain.NodeTypeSubGraph, "")
	require.NoError(t, err)

	notSub := graph.New("not-sub")
	_, err = notSub.AddNode(domain.NodeTypeStart, "")
	require.NoError(t, err)
	sn, err := notSub.AddNode(domain.NodeTypeSubGraph, "")
	require.NoError(t, err)
	require.NoError(t, notSub.SetSubGraph(sn, menuGraph(t)))

	brokenChild := graph.New("broken-child")
	_, err = brokenChild.AddNode(domain.NodeTypeStart, "")
	require.NoError(t, err)
	sn, err = brokenChild.AddNode(domain.NodeTypeSubGraph, "")
	require.NoError(t, err)
	child := graph.New("child", graph.AsSubGraph())
	_, err = child.AddNode(domain.NodeTypeExit, "")
	require.NoError(t, err)
	require.NoError(t, brokenChild.SetSubGraph(sn, child))

	tests := []struct {
		name string
		g    *graph.Graph
		want error
	}{
		{"Nil graph", nil, domain.ErrEmptyGraph},
		{"No nodes", emptyGraph, domain.ErrEmptyGraph},
		{"No start", noStart, domain.ErrNoEntryNode},
		{"Unresolved sub graph", unresolved, domain.ErrUnresolvedSubGraph},
		{"Reference to a root graph", notSub, domain.ErrUnresolvedSubGraph},
		{"Child without enter", brokenChild, domain.ErrNoEntryNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := controller.New(tt.g)

			assert.False(t, c.Enabled())
			assert.ErrorIs(t, c.Err(), tt.want)

			err := c.Tick(time.Millisecond)
			assert.ErrorIs(t, err, domain.ErrControllerDisabled)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, c.GoToNodeByName("Alone"), domain.ErrControllerDisabled)
			assert.NotEmpty(t, c.Status().Error)
		})
	}
}

func TestController_GoTo(t *testing.T) {
	g := menuGraph(t)
	c := controller.New(g)

	require.NoError(t, c.GoToNodeByName("Credits"))
	active, _ := c.Status().Active()
	assert.Equal(t, "credits", active.ID)

	// The explicit GoTo replaced the deferred start.
	require.NoError(t, c.Tick(time.Millisecond))
	active, _ = c.Status().Active()
	assert.Equal(t, "credits", active.ID)

	require.NoError(t, c.GoToNodeByID("play"))
	require.NoError(t, c.GoToNode(g.NodeByID("menu")))
	active, _ = c.Status().Active()
	assert.Equal(t, "menu", active.ID)

	foreign := menuGraph(t).NodeByID("menu")
	assert.ErrorIs(t, c.GoToNode(foreign), domain.ErrNodeNotInGraph)
	assert.ErrorIs(t, c.GoToNodeByName("Nowhere"), domain.ErrNodeNotFound)
	assert.ErrorIs(t, c.GoToNodeByID("nowhere"), domain.ErrNodeNotFound)
}

func TestController_GoToBeforeStartActivatesGlobals(t *testing.T) {
	g := menuGraph(t)
	pause, err := g.AddNodeWithID("pause", domain.NodeTypeGeneral, "Pause")
	require.NoError(t, err)
	pause.Global = true
	c := controller.New(g)
	require.NoError(t, c.Err())

	require.NoError(t, c.GoToNodeByName("Credits"))

	st := c.Status()
	active, ok := st.Active()
	require.True(t, ok)
	assert.Equal(t, "credits", active.ID)
	require.Len(t, st.Globals, 1)
	assert.Equal(t, "pause", st.Globals[0].ID)

	// Later GoTo calls leave the globals alone.
	require.NoError(t, c.GoToNodeByID("play"))
	assert.Len(t, c.Status().Globals, 1)
}

func TestController_TickHandlersAndAdvance(t *testing.T) {
	g := menuGraph(t)
	var phases []graph.Phase
	require.NoError(t, g.SetHandler("menu", func(_ *graph.Graph, _ *graph.Node, tick graph.Tick) {
		phases = append(phases, tick.Phase)
	}))
	c := controller.New(g)

	require.NoError(t, c.Tick(time.Millisecond))
	assert.Empty(t, phases, "the first tick only activates the entry node")

	require.NoError(t, c.FixedUpdate(time.Millisecond))
	require.NoError(t, c.Tick(time.Millisecond))
	assert.Equal(t, []graph.Phase{graph.PhaseFixedUpdate, graph.PhaseUpdate, graph.PhaseLateUpdate}, phases)

	require.NoError(t, c.Advance(0))
	active, _ := c.Status().Active()
	assert.Equal(t, "Play", active.Name)

	// Play has no connected output: stay put.
	require.NoError(t, c.Advance(0))
	active, _ = c.Status().Active()
	assert.Equal(t, "Play", active.Name)
}

func TestController_FixedUpdateBeforeStart(t *testing.T) {
	g := menuGraph(t)
	calls := 0
	require.NoError(t, g.SetHandler("start", func(*graph.Graph, *graph.Node, graph.Tick) { calls++ }))
	c := controller.New(g)

	require.NoError(t, c.FixedUpdate(time.Millisecond))
	assert.Zero(t, calls)
	assert.False(t, c.Status().Started)
}

func TestController_Run(t *testing.T) {
	c := controller.New(menuGraph(t))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := c.Run(ctx, 5*time.Millisecond)

	require.NoError(t, err)
	st := c.Status()
	assert.True(t, st.Started)
	assert.Greater(t, st.Ticks, uint64(1))
}

func TestController_RunDisabled(t *testing.T) {
	c := controller.New(graph.New("empty"))
	err := c.Run(context.Background(), time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrControllerDisabled)
}

func TestController_Close(t *testing.T) {
	reg := controller.NewRegistry()
	g := menuGraph(t)
	c := controller.New(g, controller.WithName("main"), controller.WithRegistry(reg))
	require.NoError(t, c.Tick(time.Millisecond))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, ok := reg.Lookup("main")
	assert.False(t, ok)
	assert.False(t, c.Enabled())
	assert.Nil(t, g.ActiveNode())
	assert.ErrorIs(t, c.Tick(time.Millisecond), domain.ErrControllerDisabled)
}

func TestController_Inspect(t *testing.T) {
	c := controller.New(menuGraph(t))
	var name string
	c.Inspect(func(g *graph.Graph) { name = g.Name })
	assert.Equal(t, "menu", name)
}
