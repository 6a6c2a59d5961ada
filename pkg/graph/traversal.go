package graph

import (
	"fmt"
	"time"

	"github.com/aretw0/nody/pkg/domain"
)

// activation is a queued SetActiveNode request.
type activation struct {
	graph *Graph
	node  *Node
	via   *Connection
}

// SetActiveNode makes n the active node of the graph. The previous active node
// is exited before n is entered. Pass-through nodes queue further activations,
// which are processed before the outermost call returns.
//
// A *LoopError is returned when the chain exceeds the hop budget; the last
// activated node stays active.
func (g *Graph) SetActiveNode(n *Node, via *Connection) error {
	if n == nil {
		return domain.ErrNodeNotFound
	}
	if !g.ContainsNode(n) {
		return fmt.Errorf("activate %q in graph %q: %w", n.Name, g.Name, domain.ErrNodeNotInGraph)
	}
	g.enabled = true
	g.request(n, via)
	return g.root().drain()
}

// SetActiveNodeByConnection activates the input node of c, passing c along so
// the node knows which socket it was entered through.
func (g *Graph) SetActiveNodeByConnection(c *Connection) error {
	if c == nil {
		return fmt.Errorf("activate by connection: %w", domain.ErrSocketNotFound)
	}
	in := g.sockets[c.InputSocketID]
	if in == nil || !in.has(c) {
		return fmt.Errorf("activate by connection %q: %w", c.ID, domain.ErrNodeNotInGraph)
	}
	n := g.index[c.InputNodeID]
	if n == nil {
		return fmt.Errorf("activate by connection %q: %w", c.ID, domain.ErrNodeNotFound)
	}
	return g.SetActiveNode(n, c)
}

// SetActiveNodeByID looks the node up by id and activates it.
func (g *Graph) SetActiveNodeByID(id string) error {
	n := g.NodeByID(id)
	if n == nil {
		return fmt.Errorf("activate node id %q: %w", id, domain.ErrNodeNotFound)
	}
	return g.SetActiveNode(n, nil)
}

// SetActiveNodeByName looks the node up by name and activates it.
func (g *Graph) SetActiveNodeByName(name string) error {
	n := g.NodeByName(name)
	if n == nil {
		return fmt.Errorf("activate node %q: %w", name, domain.ErrNodeNotFound)
	}
	return g.SetActiveNode(n, nil)
}

// ActivateStartOrEnterNode activates the Start node of a root graph or the
// Enter node of a sub graph.
func (g *Graph) ActivateStartOrEnterNode() error {
	entry := g.EntryNode()
	if entry == nil {
		return fmt.Errorf("graph %q: %w", g.Name, domain.ErrNoEntryNode)
	}
	return g.SetActiveNode(entry, nil)
}

// Continue follows the first connection of the given output of n. An
// unconnected output leaves the graph where it is.
func (g *Graph) Continue(n *Node, output int) error {
	if !g.ContainsNode(n) {
		return domain.ErrNodeNotInGraph
	}
	s := n.Output(output)
	if s == nil {
		return fmt.Errorf("continue from %q output %d: %w", n.Name, output, domain.ErrSocketNotFound)
	}
	c := s.FirstConnection()
	if c == nil {
		g.logger.Debug("continue: output not connected", "graph", g.Name, "node", n.Name, "output", output)
		return nil
	}
	return g.SetActiveNodeByConnection(c)
}

// ActivateGlobalNodes marks every global node active.
func (g *Graph) ActivateGlobalNodes() {
	for _, n := range g.nodes {
		if !n.Global || g.activeGlobals[n.ID] {
			continue
		}
		g.activeGlobals[n.ID] = true
		g.emitNode(g.hooks.OnNodeActivated, domain.EventNodeActivated, n, nil, true)
	}
}

// DeactivateGlobalNodes marks every global node inactive.
func (g *Graph) DeactivateGlobalNodes() {
	for _, n := range g.nodes {
		if !g.activeGlobals[n.ID] {
			continue
		}
		delete(g.activeGlobals, n.ID)
		g.emitNode(g.hooks.OnNodeDeactivated, domain.EventNodeDeactivated, n, nil, true)
	}
}

// Disable tears the live path down: the active node is exited, global nodes
// are deactivated, a running sub graph is released and SwitchBack return
// slots are forgotten.
func (g *Graph) Disable() {
	if g.parent != nil && g.parentNode != nil {
		g.parent.releaseSubGraph(g.parentNode)
		return
	}
	g.teardown()
	if g.root() == g {
		g.pending = nil
	}
}

// ActiveNode returns the active node, or nil.
func (g *Graph) ActiveNode() *Node {
	if g.activeNodeID == "" {
		return nil
	}
	return g.index[g.activeNodeID]
}

// ActiveGlobalNodes returns the active global nodes in creation order.
func (g *Graph) ActiveGlobalNodes() []*Node {
	var active []*Node
	for _, n := range g.nodes {
		if g.activeGlobals[n.ID] {
			active = append(active, n)
		}
	}
	return active
}

// ActiveSubGraph returns the child graph currently running, or nil.
func (g *Graph) ActiveSubGraph() *Graph {
	return g.activeSubGraph
}

// Parent returns the graph that entered this sub graph, or nil.
func (g *Graph) Parent() *Graph {
	return g.parent
}

// ParentNode returns the SubGraph node that entered this sub graph, or nil.
func (g *Graph) ParentNode() *Node {
	return g.parentNode
}

// Enabled reports whether the graph takes part in traversal and ticks.
func (g *Graph) Enabled() bool {
	return g.enabled
}

// Path returns the chain of active nodes from this graph down through
// running sub graphs.
func (g *Graph) Path() []*Node {
	var path []*Node
	for cur := g; cur != nil; cur = cur.activeSubGraph {
		if n := cur.ActiveNode(); n != nil {
			path = append(path, n)
		}
	}
	return path
}

// root returns the top of the live graph tree, which owns the work-list.
func (g *Graph) root() *Graph {
	r := g
	for r.parent != nil {
		r = r.parent
	}
	return r
}

func (g *Graph) request(n *Node, via *Connection) {
	r := g.root()
	r.pending = append(r.pending, activation{graph: g, node: n, via: via})
}

// drain processes queued activations. Nested calls return immediately and
// leave the work to the outermost one.
func (g *Graph) drain() error {
	if g.draining {
		return nil
	}
	g.draining = true
	defer func() { g.draining = false }()

	hops := 0
	var last activation
	for len(g.pending) > 0 {
		req := g.pending[0]
		g.pending = g.pending[1:]

		if !req.graph.enabled || !req.graph.ContainsNode(req.node) {
			g.logger.Debug("dropping stale activation", "graph", req.graph.Name, "node", req.node.Name)
			continue
		}

		hops++
		if hops > g.maxHops {
			g.pending = nil
			err := &LoopError{GraphID: last.graph.ID, NodeID: last.node.ID, Hops: g.maxHops}
			last.graph.logger.Error("traversal aborted", "graph", last.graph.Name, "node", last.node.Name, "hops", g.maxHops)
			if fn := last.graph.hooks.OnLoopDetected; fn != nil {
				fn(&domain.LoopEvent{
					EventBase: last.graph.base(domain.EventLoopDetected),
					NodeID:    err.NodeID,
					Hops:      err.Hops,
				})
			}
			return err
		}

		req.graph.activate(req.node, req.via)
		last = req
	}
	return nil
}

func (g *Graph) activate(n *Node, via *Connection) {
	prev := g.ActiveNode()
	if prev != nil {
		g.deactivate(prev)
	}
	if prev == nil && via != nil {
		prev = g.index[via.OutputNodeID]
	}

	g.activeNodeID = n.ID
	g.logger.Debug("node activated", "graph", g.Name, "node", n.Name, "type", n.Type)
	g.emitNode(g.hooks.OnNodeActivated, domain.EventNodeActivated, n, via, false)

	if enter := behaviourOf(n).enter; enter != nil {
		enter(g, n, prev, via)
	}
}

func (g *Graph) deactivate(n *Node) {
	if exit := behaviourOf(n).exit; exit != nil {
		exit(g, n)
	}
	if g.activeNodeID != n.ID {
		return
	}
	g.activeNodeID = ""
	g.emitNode(g.hooks.OnNodeDeactivated, domain.EventNodeDeactivated, n, nil, false)
}

func (g *Graph) clearActive() {
	if n := g.ActiveNode(); n != nil {
		g.deactivate(n)
	}
}

// follow queues the node at the far end of the socket's first connection.
func (g *Graph) follow(s *Socket) bool {
	c := s.FirstConnection()
	if c == nil {
		return false
	}
	target := g.index[c.InputNodeID]
	if target == nil {
		return false
	}
	g.request(target, c)
	return true
}

func (g *Graph) setActiveSubGraph(sn *Node, child *Graph) {
	if g.activeSubGraph == child && g.activeSubGraphNode == sn {
		return
	}
	g.activeSubGraph = child
	g.activeSubGraphNode = sn
	if child == nil {
		g.activeSubGraphNode = nil
	}

	if fn := g.hooks.OnSubGraphChanged; fn != nil {
		evt := &domain.SubGraphEvent{EventBase: g.base(domain.EventSubGraphChanged)}
		if sn != nil {
			evt.NodeID = sn.ID
		}
		if child != nil {
			evt.SubGraphID = child.ID
			evt.SubGraphName = child.Name
		}
		fn(evt)
	}
}

// releaseSubGraph unlinks the child of sn if it is still running under it.
func (g *Graph) releaseSubGraph(sn *Node) {
	if sn == nil || sn.SubGraph == nil {
		return
	}
	child := sn.SubGraph.Graph
	if child != nil && child.parent == g && child.parentNode == sn {
		child.detach()
	}
	if g.activeSubGraphNode == sn {
		g.setActiveSubGraph(sn, nil)
	}
}

// returnFromSubGraph is called by an Exit node of the child of sn. The child
// is released in the same call and traversal continues after sn.
func (g *Graph) returnFromSubGraph(sn *Node) {
	g.releaseSubGraph(sn)
	if g.follow(sn.Output(0)) {
		return
	}
	g.logger.Warn("sub graph returned to an unconnected output, staying put",
		"graph", g.Name, "node", sn.Name)
}

func (g *Graph) detach() {
	g.teardown()
	g.parent = nil
	g.parentNode = nil
}

func (g *Graph) teardown() {
	g.clearActive()
	if g.activeSubGraphNode != nil {
		g.releaseSubGraph(g.activeSubGraphNode)
	}
	g.DeactivateGlobalNodes()
	g.resetSwitchBacks()
	g.enabled = false
}

func (g *Graph) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		GraphID:   g.ID,
		GraphName: g.Name,
	}
}

func (g *Graph) emitNode(fn func(*domain.NodeEvent), t domain.EventType, n *Node, via *Connection, global bool) {
	if fn == nil {
		return
	}
	evt := &domain.NodeEvent{
		EventBase: g.base(t),
		NodeID:    n.ID,
		NodeName:  n.Name,
		NodeType:  n.Type,
		Global:    global,
	}
	if via != nil {
		evt.ConnectionID = via.ID
	}
	fn(evt)
}

func (g *Graph) emitConnection(fn func(*domain.ConnectionEvent), t domain.EventType, c *Connection) {
	if fn == nil {
		return
	}
	fn(&domain.ConnectionEvent{
		EventBase:      g.base(t),
		ConnectionID:   c.ID,
		OutputNodeID:   c.OutputNodeID,
		OutputSocketID: c.OutputSocketID,
		InputNodeID:    c.InputNodeID,
		InputSocketID:  c.InputSocketID,
	})
}
