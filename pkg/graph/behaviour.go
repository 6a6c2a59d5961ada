package graph

import (
	"github.com/aretw0/nody/pkg/domain"
)

// behaviour is the dispatch entry of a node type.
type behaviour struct {
	name      string
	width     float64
	deletable bool

	// sockets creates the fixed sockets of the variant.
	sockets func(g *Graph, n *Node)
	// check computes the validation flags of the variant.
	check func(g *Graph, n *Node) NodeErrors
	// enter runs after n became the active node. It may queue further activations.
	enter func(g *Graph, n, prev *Node, via *Connection)
	// exit runs before n stops being the active node.
	exit func(g *Graph, n *Node)
}

// behaviours is filled in init to break the reference cycle between the table
// and the traversal functions it points to.
var behaviours map[domain.NodeType]behaviour

func init() {
	behaviours = map[domain.NodeType]behaviour{
		domain.NodeTypeStart: {
			name:    "Start",
			width:   120,
			sockets: entrySockets,
			check:   checkEntry,
			enter:   enterEntry,
		},
		domain.NodeTypeEnter: {
			name:    "Enter",
			width:   120,
			sockets: entrySockets,
			check:   checkEntry,
			enter:   enterEntry,
		},
		domain.NodeTypeExit: {
			name:  "Exit",
			width: 120,
			sockets: func(g *Graph, n *Node) {
				g.newSocket(n, "In", domain.Input, domain.Multiple)
			},
			check: func(g *Graph, n *Node) NodeErrors {
				return NodeErrors{InputNotConnected: !n.Input(0).IsConnected()}
			},
			enter: enterExit,
		},
		domain.NodeTypeSubGraph: {
			name:      "Sub Graph",
			width:     200,
			deletable: true,
			sockets: func(g *Graph, n *Node) {
				g.newSocket(n, "In", domain.Input, domain.Multiple)
				g.newSocket(n, "Out", domain.Output, domain.Override)
				n.SubGraph = &SubGraphState{}
			},
			check: checkSubGraph,
			enter: enterSubGraph,
			exit:  leaveSubGraph,
		},
		domain.NodeTypeSwitchBack: {
			name:      "Switch Back",
			width:     240,
			deletable: true,
			sockets: func(g *Graph, n *Node) {
				g.newSocket(n, "Target", domain.Input, domain.Override)
				g.newSocket(n, "Target", domain.Output, domain.Override)
				n.SwitchBack = &SwitchBackState{}
				g.addSwitchBackSource(n, "Source 1")
			},
			check: checkSwitchBack,
			enter: enterSwitchBack,
		},
		domain.NodeTypeGeneral: {
			name:      "Node",
			width:     200,
			deletable: true,
			sockets: func(g *Graph, n *Node) {
				g.newSocket(n, "In", domain.Input, domain.Multiple)
				g.newSocket(n, "Out", domain.Output, domain.Override)
			},
			check: func(g *Graph, n *Node) NodeErrors {
				return NodeErrors{InputNotConnected: !n.Global && !n.Input(0).IsConnected()}
			},
		},
	}
}

func behaviourOf(n *Node) behaviour {
	return behaviours[n.Type]
}

func entrySockets(g *Graph, n *Node) {
	g.newSocket(n, "Out", domain.Output, domain.Override)
}

func checkEntry(_ *Graph, n *Node) NodeErrors {
	return NodeErrors{OutputNotConnected: !n.Output(0).IsConnected()}
}

// enterEntry activates the global nodes and passes through the single output.
// An unconnected output leaves the graph inert.
func enterEntry(g *Graph, n, _ *Node, _ *Connection) {
	g.ActivateGlobalNodes()
	if g.follow(n.Output(0)) {
		return
	}
	g.logger.Warn("entry node output not connected, graph is inert",
		"graph", g.Name, "node", n.Name)
	g.clearActive()
}

// enterExit hands control back to the parent graph. Without a parent the
// node simply stays active.
func enterExit(g *Graph, n, _ *Node, _ *Connection) {
	if g.parent == nil || g.parentNode == nil {
		g.logger.Debug("exit node reached outside of a parent graph",
			"graph", g.Name, "node", n.Name)
		return
	}
	g.DeactivateGlobalNodes()
	g.parent.returnFromSubGraph(g.parentNode)
}

func checkSwitchBack(_ *Graph, n *Node) NodeErrors {
	errs := NodeErrors{TargetNotConnected: !n.Output(0).IsConnected()}
	errs.NoSourceConnected = true
	for _, src := range n.SwitchBack.Sources {
		if n.Socket(src.InputSocketID).IsConnected() {
			errs.NoSourceConnected = false
			break
		}
	}
	return errs
}
