package graph

func checkSubGraph(_ *Graph, n *Node) NodeErrors {
	errs := NodeErrors{
		InputNotConnected:  !n.Input(0).IsConnected(),
		OutputNotConnected: !n.Output(0).IsConnected(),
	}
	child := n.SubGraph.Graph
	switch {
	case child == nil:
		errs.NoGraphReferenced = true
	case !child.IsSubGraph:
		errs.ReferencedGraphIsNotSubGraph = true
	case child.EnterNode() == nil:
		errs.NoEnterNode = true
	}
	return errs
}

// enterSubGraph links the referenced child graph under n and queues its
// Enter node. A broken reference stalls traversal at n.
func enterSubGraph(g *Graph, n, _ *Node, _ *Connection) {
	n.Errors = checkSubGraph(g, n)
	if n.Errors.NoGraphReferenced || n.Errors.ReferencedGraphIsNotSubGraph || n.Errors.NoEnterNode {
		g.logger.Warn("sub graph reference is broken, staying put",
			"graph", g.Name, "node", n.Name, "errors", n.Errors.Messages())
		return
	}

	child := n.SubGraph.Graph
	for p := g; p != nil; p = p.parent {
		if p == child {
			g.logger.Warn("sub graph is already running above this node, staying put",
				"graph", g.Name, "node", n.Name, "sub_graph", child.Name)
			return
		}
	}
	// A child instance shared between SubGraph nodes runs under one of them at a time.
	if child.parent != nil {
		child.parent.releaseSubGraph(child.parentNode)
	}

	child.parent = g
	child.parentNode = n
	child.enabled = true
	g.setActiveSubGraph(n, child)
	child.request(child.EnterNode(), nil)
}

// leaveSubGraph releases the child when traversal leaves n before the child
// reached an Exit node.
func leaveSubGraph(g *Graph, n *Node) {
	g.releaseSubGraph(n)
}
