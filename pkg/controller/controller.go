package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/nody/internal/logging"
	"github.com/aretw0/nody/pkg/domain"
	"github.com/aretw0/nody/pkg/graph"
)

// Controller owns one graph and drives it.
type Controller struct {
	mu sync.Mutex

	name     string
	graph    *graph.Graph
	registry *Registry
	logger   *slog.Logger

	err          error
	enabled      bool
	pendingStart bool
	closed       bool
	ticks        uint64
}

// Option defines a functional option for configuring a Controller.
type Option func(*Controller)

// WithName sets the name the controller is registered under.
func WithName(name string) Option {
	return func(c *Controller) {
		c.name = name
	}
}

// WithRegistry publishes the controller in r for its lifetime.
func WithRegistry(r *Registry) Option {
	return func(c *Controller) {
		c.registry = r
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a controller for g. It never fails: if g is structurally
// unusable the controller is created disabled and Err reports why.
func New(g *graph.Graph, opts ...Option) *Controller {
	c := &Controller{
		graph:  g,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := Validate(g); err != nil {
		c.disable(err)
		return c
	}
	if c.registry != nil {
		if err := c.registry.Register(c); err != nil {
			c.registry = nil
			c.disable(err)
			return c
		}
	}

	c.enabled = true
	c.pendingStart = true
	return c
}

func (c *Controller) disable(err error) {
	c.err = err
	c.enabled = false
	c.logger.Error("controller disabled", "controller", c.name, "err", err)
}

// Validate checks that g can be driven: it has nodes, an entry node, and
// every SubGraph node (recursively) references a sub graph with an Enter node.
func Validate(g *graph.Graph) error {
	return validate(g, make(map[*graph.Graph]bool))
}

func validate(g *graph.Graph, seen map[*graph.Graph]bool) error {
	if g == nil {
		return domain.ErrEmptyGraph
	}
	if seen[g] {
		return nil
	}
	seen[g] = true

	if len(g.Nodes()) == 0 {
		return fmt.Errorf("graph %q: %w", g.Name, domain.ErrEmptyGraph)
	}
	if g.EntryNode() == nil {
		return fmt.Errorf("graph %q: %w", g.Name, domain.ErrNoEntryNode)
	}
	for _, n := range g.Nodes() {
		if n.Type != domain.NodeTypeSubGraph {
			continue
		}
		child := n.SubGraph.Graph
		switch {
		case child == nil:
			return fmt.Errorf("graph %q node %q references %q: %w", g.Name, n.Name, n.SubGraph.Ref, domain.ErrUnresolvedSubGraph)
		case !child.IsSubGraph:
			return fmt.Errorf("graph %q node %q: %q is not a sub graph: %w", g.Name, n.Name, child.Name, domain.ErrUnresolvedSubGraph)
		}
		if err := validate(child, seen); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the registration name.
func (c *Controller) Name() string {
	return c.name
}

// Err returns the initialization failure of a disabled controller.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Enabled reports whether the controller accepts ticks and GoTo calls.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Tick advances one frame. The first tick performs the deferred activation
// of the entry node; later ticks forward Update then LateUpdate.
func (c *Controller) Tick(dt time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}

	c.ticks++
	if c.pendingStart {
		c.pendingStart = false
		c.logger.Debug("activating entry node", "controller", c.name, "graph", c.graph.Name)
		return c.graph.ActivateStartOrEnterNode()
	}
	c.graph.Update(dt)
	c.graph.LateUpdate(dt)
	return nil
}

// FixedUpdate forwards a fixed-step update once the graph has started.
func (c *Controller) FixedUpdate(dt time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}
	if !c.pendingStart {
		c.graph.FixedUpdate(dt)
	}
	return nil
}

// Run ticks the controller every interval until ctx is done.
// Traversal loops are logged and do not stop the loop.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			err := c.Tick(now.Sub(last))
			last = now
			if err == nil {
				continue
			}
			if errors.Is(err, domain.ErrTraversalLoop) {
				c.logger.Error("tick aborted", "controller", c.name, "err", err)
				continue
			}
			return err
		}
	}
}

// GoToNode activates n, which must belong to the controller's graph.
// Before the first Tick it starts the graph at n: global nodes are
// activated and the entry node is skipped.
func (c *Controller) GoToNode(n *graph.Node) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}
	if !c.graph.ContainsNode(n) {
		return domain.ErrNodeNotInGraph
	}
	return c.goTo(n)
}

// GoToNodeByName activates the node with the given name.
func (c *Controller) GoToNodeByName(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}
	n := c.graph.NodeByName(name)
	if n == nil {
		return fmt.Errorf("node %q: %w", name, domain.ErrNodeNotFound)
	}
	return c.goTo(n)
}

// GoToNodeByID activates the node with the given id.
func (c *Controller) GoToNodeByID(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}
	n := c.graph.NodeByID(id)
	if n == nil {
		return fmt.Errorf("node id %q: %w", id, domain.ErrNodeNotFound)
	}
	return c.goTo(n)
}

func (c *Controller) goTo(n *graph.Node) error {
	// An explicit GoTo replaces the deferred entry activation, which would
	// also have switched the global nodes on.
	if c.pendingStart {
		c.pendingStart = false
		c.graph.ActivateGlobalNodes()
	}
	c.logger.Debug("go to node", "controller", c.name, "node", n.Name)
	return c.graph.SetActiveNode(n, nil)
}

// Advance continues from the innermost active node through the given output.
// It is the host's way of saying "the wait is over".
func (c *Controller) Advance(output int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}

	g := c.graph
	for g.ActiveSubGraph() != nil && g.ActiveSubGraph().ActiveNode() != nil {
		g = g.ActiveSubGraph()
	}
	n := g.ActiveNode()
	if n == nil {
		return fmt.Errorf("advance: no active node: %w", domain.ErrNodeNotFound)
	}
	return g.Continue(n, output)
}

// Inspect runs fn with exclusive access to the graph.
func (c *Controller) Inspect(fn func(g *graph.Graph)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.graph)
}

// Close unregisters the controller and tears the graph's live path down.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.registry != nil {
		c.registry.Unregister(c)
	}
	if c.graph != nil {
		c.graph.Disable()
	}
	c.enabled = false
	return nil
}

func (c *Controller) check() error {
	if c.enabled {
		return nil
	}
	if c.err != nil {
		return fmt.Errorf("%w: %w", domain.ErrControllerDisabled, c.err)
	}
	return domain.ErrControllerDisabled
}
