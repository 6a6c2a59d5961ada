package nody

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/nody/internal/compiler"
	"github.com/aretw0/nody/internal/logging"
	"github.com/aretw0/nody/pkg/adapters/file"
	"github.com/aretw0/nody/pkg/controller"
	"github.com/aretw0/nody/pkg/domain"
	"github.com/aretw0/nody/pkg/graph"
	"github.com/aretw0/nody/pkg/ports"
)

type settings struct {
	name       string
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	maxHops    int
	registry   *controller.Registry
}

// Option defines a functional option for New and Open.
type Option func(*settings)

// WithName names the controller. It defaults to the graph id.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithLifecycleHooks registers observability hooks on every compiled graph.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for compiler, graphs and controller.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithMaxHops bounds the activations of a single traversal drain.
func WithMaxHops(n int) Option {
	return func(s *settings) {
		s.maxHops = n
	}
}

// WithRegistry registers the controller in r.
func WithRegistry(r *controller.Registry) Option {
	return func(s *settings) {
		s.registry = r
	}
}

// New compiles the graph graphID from loader and wraps it in a controller.
// The entry node is activated by the controller's first Tick.
func New(ctx context.Context, loader ports.GraphLoader, graphID string, opts ...Option) (*controller.Controller, error) {
	s := &settings{name: graphID}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	graphOpts := []graph.Option{
		graph.WithLogger(s.logger),
		graph.WithLifecycleHooks(s.hooks),
	}
	if s.maxHops > 0 {
		graphOpts = append(graphOpts, graph.WithMaxHops(s.maxHops))
	}
	// A controller cannot drive an unresolved reference, so missing sub
	// graph documents fail here rather than in validation.
	g, err := compiler.New(loader,
		compiler.WithLogger(s.logger),
		compiler.WithGraphOptions(graphOpts...),
		compiler.WithStrictReferences(),
	).Compile(ctx, graphID)
	if err != nil {
		return nil, fmt.Errorf("failed to compile graph %q: %w", graphID, err)
	}

	ctrlOpts := []controller.Option{
		controller.WithName(s.name),
		controller.WithLogger(s.logger.With("controller", s.name)),
	}
	if s.registry != nil {
		ctrlOpts = append(ctrlOpts, controller.WithRegistry(s.registry))
	}
	c := controller.New(g, ctrlOpts...)
	if err := c.Err(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Open is New over a directory of YAML/JSON graph documents.
func Open(ctx context.Context, dir, graphID string, opts ...Option) (*controller.Controller, error) {
	return New(ctx, file.New(dir), graphID, opts...)
}
