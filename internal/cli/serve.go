package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/nody/internal/config"
	httpAdapter "github.com/aretw0/nody/pkg/adapters/http"
	"github.com/aretw0/nody/pkg/adapters/mcp"
	"github.com/aretw0/nody/pkg/controller"
	"github.com/aretw0/nody/pkg/observability"
	"github.com/aretw0/nody/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Host owns the controllers served by 'nody serve' and 'nody mcp'.
type Host struct {
	Registry *controller.Registry
	Streams  *httpAdapter.StreamManager
	Metrics  *prometheus.Registry
	Interval time.Duration

	logger *slog.Logger
}

// BuildHost creates one controller per configured entry, or a single
// controller for the default graph when none is configured.
func BuildHost(ctx context.Context, dir string, store ports.GraphLoader, cfg *config.Config, logger *slog.Logger) (*Host, error) {
	h := &Host{
		Registry: controller.NewRegistry(),
		Streams:  httpAdapter.NewStreamManager(logger),
		Metrics:  prometheus.NewRegistry(),
		Interval: cfg.Interval(),
		logger:   logger,
	}
	metrics, err := observability.NewMetrics(h.Metrics)
	if err != nil {
		return nil, err
	}

	entries := cfg.Controllers
	if len(entries) == 0 {
		id, err := determineEntryPoint(ctx, store, dir)
		if err != nil {
			return nil, err
		}
		entries = []config.ControllerConfig{{Name: id, Graph: id}}
	}

	for _, e := range entries {
		hooks := observability.Compose(
			h.Streams.Hooks(e.Name),
			metrics.Hooks(),
			observability.LoggingHooks(logger),
		)
		if _, err := createController(ctx, store, e.Graph, e.Name, cfg, logger, hooks, h.Registry); err != nil {
			h.Close()
			return nil, fmt.Errorf("controller %q: %w", e.Name, err)
		}
		logger.Info("controller ready", "name", e.Name, "graph", e.Graph)
	}
	return h, nil
}

// RunControllers ticks every registered controller on the host interval
// until ctx is done.
func (h *Host) RunControllers(ctx context.Context) {
	var wg sync.WaitGroup
	for _, c := range h.Registry.List() {
		wg.Add(1)
		go func(c *controller.Controller) {
			defer wg.Done()
			if err := c.Run(ctx, h.Interval); err != nil {
				h.logger.Error("controller stopped", "name", c.Name(), "err", err)
			}
		}(c)
	}
	wg.Wait()
}

// Close closes every controller, which also removes it from the registry.
func (h *Host) Close() {
	for _, c := range h.Registry.List() {
		c.Close()
	}
}

// ServeOptions configures 'nody serve'.
type ServeOptions struct {
	Dir        string
	ConfigPath string
	Addr       string
	Debug      bool
	// AutoTick runs the controllers on the configured interval.
	AutoTick bool
}

// Serve starts the HTTP server and blocks until a signal is received.
func Serve(opts ServeOptions) error {
	cfg, err := LoadConfig(opts.Dir, opts.ConfigPath)
	if err != nil {
		return err
	}
	logger, err := createLogger(cfg.LogLevel, opts.Debug)
	if err != nil {
		return err
	}
	store, closeStore := OpenStore(opts.Dir, cfg, logger)
	defer closeStore()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	host, err := BuildHost(sigCtx, opts.Dir, store, cfg, logger)
	if err != nil {
		return err
	}
	defer host.Close()

	addr := opts.Addr
	if addr == "" {
		addr = cfg.HTTP.Addr
	}
	srv := &http.Server{
		Addr: addr,
		Handler: httpAdapter.NewHandler(host.Registry,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(host.Metrics),
			httpAdapter.WithStreams(host.Streams),
		),
	}

	if opts.AutoTick {
		go host.RunControllers(sigCtx)
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting nody server", "addr", srv.Addr, "controllers", len(host.Registry.List()))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-sigCtx.Done():
		logger.Info("start shutdown", "signal", sigCtx.Signal())

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown did not complete", "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("nody server stopped gracefully")
		return nil
	}
}

// MCPOptions configures 'nody mcp'.
type MCPOptions struct {
	Dir        string
	ConfigPath string
	Transport  string
	Port       int
	Debug      bool
	AutoTick   bool
}

// ServeMCP exposes the host controllers as MCP tools.
func ServeMCP(opts MCPOptions) error {
	cfg, err := LoadConfig(opts.Dir, opts.ConfigPath)
	if err != nil {
		return err
	}
	logger, err := createLogger(cfg.LogLevel, opts.Debug)
	if err != nil {
		return err
	}
	store, closeStore := OpenStore(opts.Dir, cfg, logger)
	defer closeStore()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	host, err := BuildHost(sigCtx, opts.Dir, store, cfg, logger)
	if err != nil {
		return err
	}
	defer host.Close()
	if opts.AutoTick {
		go host.RunControllers(sigCtx)
	}

	srv := mcp.NewServer(host.Registry, logger)
	switch opts.Transport {
	case "", "stdio":
		logger.Info("starting nody MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("starting nody MCP server (SSE)", "port", opts.Port)
		if err := srv.ServeSSE(sigCtx, opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
	}
}
