package graph

// enterSwitchBack routes traversal through a SwitchBack node.
//
// Entering through a source input records that source as the return address
// and continues to the target. Entering any other way (the target input, or
// no connection at all) returns to the recorded source, falling back to the
// first connected source and finally to the node that triggered the entry.
func enterSwitchBack(g *Graph, n, prev *Node, via *Connection) {
	sb := n.SwitchBack

	if via != nil {
		if src, ok := sb.sourceByInput(via.InputSocketID); ok {
			if g.follow(n.Output(0)) {
				sb.returnSocketID = src.OutputSocketID
				return
			}
			g.logger.Warn("switch back target not connected, returning to sender",
				"graph", g.Name, "node", n.Name, "source", src.Name)
			returnToSender(g, n, prev)
			return
		}
	}

	if id := sb.returnSocketID; id != "" {
		sb.returnSocketID = ""
		if g.follow(n.Socket(id)) {
			return
		}
	}

	for _, src := range sb.Sources {
		if g.follow(n.Socket(src.OutputSocketID)) {
			g.logger.Debug("switch back has no return address, using first connected source",
				"graph", g.Name, "node", n.Name, "source", src.Name)
			return
		}
	}

	g.logger.Warn("switch back has no connected source, returning to sender",
		"graph", g.Name, "node", n.Name)
	returnToSender(g, n, prev)
}

func returnToSender(g *Graph, n, prev *Node) {
	if prev == nil || prev == n || !g.ContainsNode(prev) {
		g.logger.Warn("no sender to return to, staying put", "graph", g.Name, "node", n.Name)
		return
	}
	g.request(prev, nil)
}

func (g *Graph) resetSwitchBacks() {
	for _, n := range g.nodes {
		if n.SwitchBack != nil {
			n.SwitchBack.returnSocketID = ""
		}
	}
}
