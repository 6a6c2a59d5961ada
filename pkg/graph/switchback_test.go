package graph_test

import (
	"testing"

	"github.com/aretw0/nody/pkg/domain"
	"github.com/aretw0/nody/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type modalFixture struct {
	g      *graph.Graph
	s1, s2 *graph.Node
	sb     *graph.Node
	target *graph.Node
}

// newModal wires S1 and S2 into a SwitchBack whose target is a "Modal"
// General node; the modal's output goes back into the target input and each
// source output returns to its origin.
func newModal(t *testing.T) modalFixture {
	t.Helper()
	g := graph.New("root")
	f := modalFixture{
		g:      g,
		s1:     addNode(t, g, domain.NodeTypeGeneral, "S1"),
		s2:     addNode(t, g, domain.NodeTypeGeneral, "S2"),
		sb:     addNode(t, g, domain.NodeTypeSwitchBack, ""),
		target: addNode(t, g, domain.NodeTypeGeneral, "Modal"),
	}
	_, err := g.AddSwitchBackSource(f.sb, "Source 2")
	require.NoError(t, err)
	require.Len(t, f.sb.SwitchBack.Sources, 2)

	connect(t, g, f.s1.Output(0), f.sb.Input(1))
	connect(t, g, f.s2.Output(0), f.sb.Input(2))
	connect(t, g, f.sb.Output(0), f.target.Input(0))
	connect(t, g, f.target.Output(0), f.sb.Input(0))
	connect(t, g, f.sb.Output(1), f.s1.Input(0))
	connect(t, g, f.sb.Output(2), f.s2.Input(0))
	return f
}

func TestSwitchBack_RoundTrip(t *testing.T) {
	f := newModal(t)

	for _, origin := range []*graph.Node{f.s1, f.s2, f.s1} {
		require.NoError(t, f.g.SetActiveNode(origin, nil))

		require.NoError(t, f.g.Continue(origin, 0))
		assert.Same(t, f.target, f.g.ActiveNode())
		assert.NotEmpty(t, f.sb.SwitchBack.ReturnSocketID())

		require.NoError(t, f.g.Continue(f.target, 0))
		assert.Same(t, origin, f.g.ActiveNode(), "returns to %s", origin.Name)
		assert.Empty(t, f.sb.SwitchBack.ReturnSocketID(), "slot is consumed on return")
	}
}

func TestSwitchBack_FallbackToFirstSource(t *testing.T) {
	f := newModal(t)
	require.NoError(t, f.g.SetActiveNode(f.target, nil))

	require.NoError(t, f.g.Continue(f.target, 0))

	assert.Same(t, f.s1, f.g.ActiveNode())
}

func TestSwitchBack_FallbackSkipsUnconnectedSources(t *testing.T) {
	f := newModal(t)
	f.g.Disconnect(f.sb.Output(1).FirstConnection())
	require.NoError(t, f.g.SetActiveNode(f.target, nil))

	require.NoError(t, f.g.Continue(f.target, 0))

	assert.Same(t, f.s2, f.g.ActiveNode())
}

func TestSwitchBack_ReturnToSender(t *testing.T) {
	t.Run("Target not connected", func(t *testing.T) {
		f := newModal(t)
		f.g.Disconnect(f.sb.Output(0).FirstConnection())
		require.NoError(t, f.g.SetActiveNode(f.s2, nil))

		require.NoError(t, f.g.Continue(f.s2, 0))

		assert.Same(t, f.s2, f.g.ActiveNode())
		assert.Empty(t, f.sb.SwitchBack.ReturnSocketID())
	})

	t.Run("No source connected", func(t *testing.T) {
		f := newModal(t)
		f.g.Disconnect(f.sb.Output(1).FirstConnection())
		f.g.Disconnect(f.sb.Output(2).FirstConnection())
		require.NoError(t, f.g.SetActiveNode(f.target, nil))

		require.NoError(t, f.g.Continue(f.target, 0))

		assert.Same(t, f.target, f.g.ActiveNode())
	})

	t.Run("Nothing to return to", func(t *testing.T) {
		g := graph.New("root")
		sb := addNode(t, g, domain.NodeTypeSwitchBack, "")

		require.NoError(t, g.SetActiveNode(sb, nil))

		assert.Same(t, sb, g.ActiveNode(), "never leaves the graph without an active node")
	})
}

func TestSwitchBack_StaleReturnAddress(t *testing.T) {
	f := newModal(t)
	require.NoError(t, f.g.SetActiveNode(f.s2, nil))
	require.NoError(t, f.g.Continue(f.s2, 0))
	require.Same(t, f.target, f.g.ActiveNode())

	// The remembered return edge disappears while the modal is open.
	f.g.Disconnect(f.sb.Output(2).FirstConnection())
	require.NoError(t, f.g.Continue(f.target, 0))

	assert.Same(t, f.s1, f.g.ActiveNode(), "falls back to the first connected source")
}

func TestSwitchBack_SlotSurvivesExitUntilDisable(t *testing.T) {
	f := newModal(t)
	require.NoError(t, f.g.SetActiveNode(f.s1, nil))
	require.NoError(t, f.g.Continue(f.s1, 0))
	slot := f.sb.SwitchBack.ReturnSocketID()
	require.Equal(t, f.sb.Output(1).ID, slot)

	// Leaving the switch back for the modal keeps the slot.
	assert.Same(t, f.target, f.g.ActiveNode())
	assert.Equal(t, slot, f.sb.SwitchBack.ReturnSocketID())

	f.g.Disable()
	assert.Empty(t, f.sb.SwitchBack.ReturnSocketID())
}

func TestAddSwitchBackSource_WrongType(t *testing.T) {
	g := graph.New("root")
	n := addNode(t, g, domain.NodeTypeGeneral, "A")
	_, err := g.AddSwitchBackSource(n, "nope")
	assert.ErrorIs(t, err, domain.ErrNodeTypeNotAllowed)
}
