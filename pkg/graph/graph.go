package graph

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/nody/internal/logging"
	"github.com/aretw0/nody/pkg/domain"
	"github.com/google/uuid"
)

// DefaultMaxHops bounds the activations processed by a single traversal drain.
const DefaultMaxHops = 1000

// Graph owns a set of nodes and the traversal state over them.
type Graph struct {
	ID         string
	Name       string
	Version    string
	IsSubGraph bool

	nodes   []*Node
	index   map[string]*Node
	sockets map[string]*Socket

	activeNodeID       string
	activeGlobals      map[string]bool
	activeSubGraph     *Graph
	activeSubGraphNode *Node
	enabled            bool

	// Set only while this graph runs as the child of a SubGraph node.
	parent     *Graph
	parentNode *Node

	handlers map[string]TickFunc

	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	maxHops int

	// Work-list, used on the root of a live graph tree.
	pending  []activation
	draining bool
}

// Option defines a functional option for configuring a Graph.
type Option func(*Graph)

// WithID sets the graph id (default: a random UUID).
func WithID(id string) Option {
	return func(g *Graph) {
		if id != "" {
			g.ID = id
		}
	}
}

// WithVersion records document version metadata.
func WithVersion(version string) Option {
	return func(g *Graph) {
		g.Version = version
	}
}

// AsSubGraph marks the graph as a sub graph (Enter/Exit instead of Start).
func AsSubGraph() Option {
	return func(g *Graph) {
		g.IsSubGraph = true
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Graph) {
		g.hooks = hooks
	}
}

// WithMaxHops caps the number of activations processed per traversal drain.
func WithMaxHops(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.maxHops = n
		}
	}
}

// New creates an empty graph.
func New(name string, opts ...Option) *Graph {
	g := &Graph{
		ID:            uuid.NewString(),
		Name:          name,
		index:         make(map[string]*Node),
		sockets:       make(map[string]*Socket),
		activeGlobals: make(map[string]bool),
		handlers:      make(map[string]TickFunc),
		logger:        logging.NewNop(),
		maxHops:       DefaultMaxHops,
	}
	for _, opt := range opts {
		opt(g)
	}
	// Sub graphs stay disabled until a SubGraph node links them.
	g.enabled = !g.IsSubGraph
	return g
}

// AddNode creates a node of type t with its default sockets.
// An empty name selects the type's default name.
func (g *Graph) AddNode(t domain.NodeType, name string) (*Node, error) {
	return g.AddNodeWithID("", t, name)
}

// AddNodeWithID is AddNode with a caller supplied, graph-unique id.
func (g *Graph) AddNodeWithID(id string, t domain.NodeType, name string) (*Node, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("add node %q: unknown type %q: %w", name, t, domain.ErrNodeTypeNotAllowed)
	}
	switch {
	case t == domain.NodeTypeStart && g.IsSubGraph,
		(t == domain.NodeTypeEnter || t == domain.NodeTypeExit) && !g.IsSubGraph:
		return nil, fmt.Errorf("add %s node to graph %q: %w", t, g.Name, domain.ErrNodeTypeNotAllowed)
	}
	if t.Singleton() && g.firstOfType(t) != nil {
		return nil, fmt.Errorf("add %s node to graph %q: %w", t, g.Name, domain.ErrSingletonNode)
	}
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := g.index[id]; exists {
		return nil, fmt.Errorf("add node: duplicate id %q in graph %q", id, g.Name)
	}

	b := behaviours[t]
	n := &Node{
		ID:        id,
		Name:      b.name,
		Type:      t,
		Deletable: b.deletable,
		Width:     b.width,
		graphID:   g.ID,
	}
	if name != "" {
		n.Name = name
	}
	b.sockets(g, n)

	g.nodes = append(g.nodes, n)
	g.index[n.ID] = n
	return n, nil
}

// RemoveNode severs every connection of n and removes it from the graph.
// Start, Enter and Exit nodes cannot be removed.
func (g *Graph) RemoveNode(n *Node) error {
	if !g.ContainsNode(n) {
		return domain.ErrNodeNotInGraph
	}
	if !n.Deletable {
		return fmt.Errorf("remove node %q: %w", n.Name, domain.ErrNodeNotDeletable)
	}

	if g.activeNodeID == n.ID {
		g.clearActive()
	}
	if g.activeGlobals[n.ID] {
		delete(g.activeGlobals, n.ID)
		g.emitNode(g.hooks.OnNodeDeactivated, domain.EventNodeDeactivated, n, nil, true)
	}
	for _, s := range n.sockets() {
		for _, c := range s.Connections() {
			g.Disconnect(c)
		}
		delete(g.sockets, s.ID)
	}

	for i, existing := range g.nodes {
		if existing == n {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			break
		}
	}
	delete(g.index, n.ID)
	delete(g.handlers, n.ID)
	n.graphID = ""
	return nil
}

// AddOutput appends an output socket to a General node.
func (g *Graph) AddOutput(n *Node, name string, policy domain.ConnectionPolicy) (*Socket, error) {
	if !g.ContainsNode(n) {
		return nil, domain.ErrNodeNotInGraph
	}
	if n.Type != domain.NodeTypeGeneral {
		return nil, fmt.Errorf("add output to %s node %q: %w", n.Type, n.Name, domain.ErrNodeTypeNotAllowed)
	}
	if policy == "" {
		policy = domain.Override
	}
	return g.newSocket(n, name, domain.Output, policy), nil
}

// AddSwitchBackSource appends a named source pair to a SwitchBack node.
func (g *Graph) AddSwitchBackSource(n *Node, name string) (SwitchBackSource, error) {
	if !g.ContainsNode(n) {
		return SwitchBackSource{}, domain.ErrNodeNotInGraph
	}
	if n.Type != domain.NodeTypeSwitchBack {
		return SwitchBackSource{}, fmt.Errorf("add source to %s node %q: %w", n.Type, n.Name, domain.ErrNodeTypeNotAllowed)
	}
	return g.addSwitchBackSource(n, name), nil
}

func (g *Graph) addSwitchBackSource(n *Node, name string) SwitchBackSource {
	in := g.newSocket(n, name, domain.Input, domain.Override)
	out := g.newSocket(n, name, domain.Output, domain.Override)
	src := SwitchBackSource{Name: name, InputSocketID: in.ID, OutputSocketID: out.ID}
	n.SwitchBack.Sources = append(n.SwitchBack.Sources, src)
	return src
}

// SetSubGraph points a SubGraph node at a child graph. A nil child clears it.
// A child that is running under n is released first.
func (g *Graph) SetSubGraph(n *Node, child *Graph) error {
	if !g.ContainsNode(n) {
		return domain.ErrNodeNotInGraph
	}
	if n.Type != domain.NodeTypeSubGraph {
		return fmt.Errorf("set sub graph on %s node %q: %w", n.Type, n.Name, domain.ErrNodeTypeNotAllowed)
	}
	if child == g {
		return fmt.Errorf("set sub graph on %q: %w", n.Name, domain.ErrRecursiveSubGraph)
	}
	if child != n.SubGraph.Graph {
		// A child running under n is released before it is replaced.
		g.releaseSubGraph(n)
	}
	n.SubGraph.Graph = child
	if child != nil && n.SubGraph.Ref == "" {
		n.SubGraph.Ref = child.ID
	}
	return nil
}

func (g *Graph) newSocket(n *Node, name string, dir domain.Direction, policy domain.ConnectionPolicy) *Socket {
	s := &Socket{
		ID:        uuid.NewString(),
		NodeID:    n.ID,
		Name:      name,
		Direction: dir,
		Policy:    policy,
	}
	if dir == domain.Input {
		n.Inputs = append(n.Inputs, s)
	} else {
		n.Outputs = append(n.Outputs, s)
	}
	g.sockets[s.ID] = s
	return s
}

// Connect links an output socket to an input socket of this graph.
// Existing connections on Override sockets are severed first; reconnecting is
// never an error and the last call wins.
func (g *Graph) Connect(output, input *Socket) (*Connection, error) {
	return g.connect("", output, input)
}

func (g *Graph) connect(id string, output, input *Socket) (*Connection, error) {
	if output == nil || input == nil {
		return nil, fmt.Errorf("connect: %w", domain.ErrSocketNotFound)
	}
	if output.Direction != domain.Output || input.Direction != domain.Input {
		return nil, fmt.Errorf("connect %q -> %q: %w", output.Name, input.Name, domain.ErrSocketDirection)
	}
	if g.sockets[output.ID] != output || g.sockets[input.ID] != input {
		return nil, fmt.Errorf("connect %q -> %q: %w", output.Name, input.Name, domain.ErrNodeNotInGraph)
	}

	for _, s := range []*Socket{output, input} {
		if s.Policy != domain.Override {
			continue
		}
		for _, existing := range s.Connections() {
			g.Disconnect(existing)
		}
	}

	if id == "" {
		id = uuid.NewString()
	}
	c := &Connection{
		ID:             id,
		OutputNodeID:   output.NodeID,
		OutputSocketID: output.ID,
		InputNodeID:    input.NodeID,
		InputSocketID:  input.ID,
	}
	output.connections = append(output.connections, c)
	input.connections = append(input.connections, c)
	g.emitConnection(g.hooks.OnConnected, domain.EventConnected, c)
	return c, nil
}

// Disconnect removes c from both of its sockets. It is a no-op when c is
// already gone.
func (g *Graph) Disconnect(c *Connection) {
	if c == nil {
		return
	}
	removed := false
	if s, ok := g.sockets[c.OutputSocketID]; ok && s.remove(c) {
		removed = true
	}
	if s, ok := g.sockets[c.InputSocketID]; ok && s.remove(c) {
		removed = true
	}
	if removed {
		g.emitConnection(g.hooks.OnDisconnected, domain.EventDisconnected, c)
	}
}

// Connections returns every connection of the graph, grouped by output socket.
func (g *Graph) Connections() []*Connection {
	var all []*Connection
	for _, n := range g.nodes {
		for _, s := range n.Outputs {
			all = append(all, s.connections...)
		}
	}
	return all
}

// Nodes returns the graph's nodes in creation order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// NodeByID looks a node up by id.
func (g *Graph) NodeByID(id string) *Node {
	return g.index[id]
}

// NodeByName returns the first node with the given name.
func (g *Graph) NodeByName(name string) *Node {
	for _, n := range g.nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// SocketByID looks a socket of any node up by id.
func (g *Graph) SocketByID(id string) *Socket {
	return g.sockets[id]
}

// ContainsNode reports whether n is owned by this graph.
func (g *Graph) ContainsNode(n *Node) bool {
	return n != nil && g.index[n.ID] == n
}

// StartNode returns the Start node, or nil.
func (g *Graph) StartNode() *Node {
	return g.firstOfType(domain.NodeTypeStart)
}

// EnterNode returns the Enter node, or nil.
func (g *Graph) EnterNode() *Node {
	return g.firstOfType(domain.NodeTypeEnter)
}

// ExitNode returns the first Exit node, or nil.
func (g *Graph) ExitNode() *Node {
	return g.firstOfType(domain.NodeTypeExit)
}

// ExitNodes returns every Exit node.
func (g *Graph) ExitNodes() []*Node {
	var exits []*Node
	for _, n := range g.nodes {
		if n.Type == domain.NodeTypeExit {
			exits = append(exits, n)
		}
	}
	return exits
}

// EntryNode returns the Start node of a root graph or the Enter node of a sub graph.
func (g *Graph) EntryNode() *Node {
	if g.IsSubGraph {
		return g.EnterNode()
	}
	return g.StartNode()
}

func (g *Graph) firstOfType(t domain.NodeType) *Node {
	for _, n := range g.nodes {
		if n.Type == t {
			return n
		}
	}
	return nil
}

// CheckForErrors recomputes and stores the validation flags of n.
func (g *Graph) CheckForErrors(n *Node) NodeErrors {
	if !g.ContainsNode(n) {
		return NodeErrors{}
	}
	if check := behaviourOf(n).check; check != nil {
		n.Errors = check(g, n)
	} else {
		n.Errors = NodeErrors{}
	}
	return n.Errors
}

// CheckAll runs CheckForErrors on every node and returns the nodes with raised flags.
func (g *Graph) CheckAll() []*Node {
	var failing []*Node
	for _, n := range g.nodes {
		if g.CheckForErrors(n).Any() {
			failing = append(failing, n)
		}
	}
	return failing
}
