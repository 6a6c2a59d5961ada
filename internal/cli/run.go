package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/nody/internal/config"
	"github.com/aretw0/nody/internal/presentation/tui"
	"github.com/aretw0/nody/pkg/controller"
	"github.com/aretw0/nody/pkg/domain"
	"github.com/aretw0/nody/pkg/observability"
	"github.com/aretw0/nody/pkg/ports"
	"github.com/muesli/termenv"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Dir        string
	ConfigPath string
	GraphID    string
	Headless   bool
	Watch      bool
	Trace      bool
	Debug      bool
	// Ticks bounds a headless run. Zero runs until interrupted.
	Ticks int
	// Color enables styled trace output.
	Color bool

	In  io.Reader
	Out io.Writer
}

// runEnv is what every run mode shares once options are resolved.
type runEnv struct {
	opts   RunOptions
	cfg    *config.Config
	logger *slog.Logger
	store  ports.GraphStore
}

// Execute handles the 'run' command logic, dispatching to Session, Headless or Watch mode.
func Execute(opts RunOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

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

	if opts.GraphID == "" {
		id, err := determineEntryPoint(sigCtx, store, opts.Dir)
		if err != nil {
			return err
		}
		opts.GraphID = id
	}

	env := &runEnv{opts: opts, cfg: cfg, logger: logger, store: store}
	switch {
	case opts.Watch:
		return RunWatch(sigCtx, env)
	case opts.Headless:
		return handleExecutionError(runHeadless(sigCtx, env))
	default:
		return RunSession(sigCtx, env)
	}
}

// hooks assembles the lifecycle hooks selected by the options.
func (e *runEnv) hooks() domain.LifecycleHooks {
	var sets []domain.LifecycleHooks
	if e.opts.Trace {
		profile := termenv.Ascii
		if e.opts.Color {
			profile = termenv.ColorProfile()
		}
		sets = append(sets, tui.TraceHooks(e.opts.Out, profile))
	}
	if e.opts.Debug {
		sets = append(sets, observability.LoggingHooks(e.logger))
	}
	return observability.Compose(sets...)
}

func (e *runEnv) controller(ctx context.Context) (*controller.Controller, error) {
	return createController(ctx, e.store, e.opts.GraphID, "", e.cfg, e.logger, e.hooks(), nil)
}

// runHeadless ticks the controller on the configured interval and prints the final status as JSON.
func runHeadless(ctx context.Context, e *runEnv) error {
	c, err := e.controller(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	interval := e.cfg.Interval()

	var runErr error
	if e.opts.Ticks > 0 {
		runErr = tickN(c, e.opts.Ticks, interval)
	} else {
		runErr = c.Run(ctx, interval)
	}

	enc := json.NewEncoder(e.opts.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Status()); err != nil {
		return err
	}
	return runErr
}

func tickN(c *controller.Controller, n int, dt time.Duration) error {
	for i := 0; i < n; i++ {
		if err := c.Tick(dt); err != nil {
			return fmt.Errorf("tick %d: %w", i+1, err)
		}
	}
	return nil
}
