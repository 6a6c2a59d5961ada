// Package compiler turns graph documents into live graphs, linking SubGraph
// nodes to freshly built child graphs.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/nody/internal/logging"
	"github.com/aretw0/nody/pkg/domain"
	"github.com/aretw0/nody/pkg/graph"
	"github.com/aretw0/nody/pkg/ports"
)

// Compiler loads documents through a GraphLoader and builds graphs from them.
type Compiler struct {
	loader     ports.GraphLoader
	logger     *slog.Logger
	graphOpts  []graph.Option
	strictRefs bool
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for compile warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithGraphOptions applies opts to every graph built, sub graphs included.
func WithGraphOptions(opts ...graph.Option) Option {
	return func(c *Compiler) {
		c.graphOpts = append(c.graphOpts, opts...)
	}
}

// WithStrictReferences makes a missing sub graph document a compile error
// instead of an unresolved reference. Without it the graph still compiles,
// which only suits inspection: the validator reports the reference, and
// controller.Validate rejects the graph.
func WithStrictReferences() Option {
	return func(c *Compiler) {
		c.strictRefs = true
	}
}

// New creates a compiler reading from loader.
func New(loader ports.GraphLoader, opts ...Option) *Compiler {
	c := &Compiler{
		loader: loader,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile builds the graph with the given id and, recursively, one child
// instance per SubGraph node. A document that (transitively) references
// itself is rejected with domain.ErrRecursiveSubGraph.
func (c *Compiler) Compile(ctx context.Context, id string) (*graph.Graph, error) {
	cache := make(map[string]*domain.GraphDocument)
	return c.build(ctx, id, nil, cache)
}

func (c *Compiler) build(ctx context.Context, id string, stack []string, cache map[string]*domain.GraphDocument) (*graph.Graph, error) {
	for _, seen := range stack {
		if seen == id {
			chain := strings.Join(append(stack, id), " -> ")
			return nil, fmt.Errorf("%s: %w", chain, domain.ErrRecursiveSubGraph)
		}
	}

	doc, err := c.load(ctx, id, cache)
	if err != nil {
		return nil, err
	}

	g, err := graph.FromDocument(doc, c.graphOpts...)
	if err != nil {
		return nil, err
	}

	// DFS: push, recurse into references, pop on return.
	stack = append(stack, id)
	for _, n := range g.Nodes() {
		if n.Type != domain.NodeTypeSubGraph || n.SubGraph.Ref == "" {
			continue
		}
		child, err := c.build(ctx, n.SubGraph.Ref, stack, cache)
		if err != nil {
			if errors.Is(err, domain.ErrGraphNotFound) && !c.strictRefs {
				c.logger.Warn("sub graph reference not found, leaving it unresolved",
					"graph", id, "node", n.Name, "ref", n.SubGraph.Ref)
				continue
			}
			return nil, fmt.Errorf("graph %q node %q: %w", id, n.Name, err)
		}
		if err := g.SetSubGraph(n, child); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (c *Compiler) load(ctx context.Context, id string, cache map[string]*domain.GraphDocument) (*domain.GraphDocument, error) {
	if doc, ok := cache[id]; ok {
		return doc, nil
	}
	doc, err := c.loader.LoadGraph(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph %s: %w", id, err)
	}
	cache[id] = doc
	return doc, nil
}
