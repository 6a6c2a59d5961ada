package cli

import (
	"context"
	"time"

	"github.com/aretw0/nody/pkg/controller"
)

// pollInterval is how often the store is checked for changes in watch mode.
var pollInterval = time.Second

// RunWatch ticks the graph and rebuilds the controller whenever a document
// of the store changes. A graph that fails to compile is reported and the
// watcher waits for the next change.
func RunWatch(ctx *SignalContext, e *runEnv) error {
	e.logger.Info("starting watcher", "graph", e.opts.GraphID)
	printSystemMessage(e.opts.Out, "Watching '%s'.", e.opts.GraphID)

	err := watchLoop(ctx, e)
	if ctx.Signal() != nil {
		e.logger.Info("stopping watcher (signal received)", "signal", ctx.Signal())
	}
	return handleExecutionError(err)
}

func watchLoop(ctx context.Context, e *runEnv) error {
	sum, err := fingerprint(ctx, e.store)
	if err != nil {
		return err
	}

	var c *controller.Controller
	reload := func() {
		if c != nil {
			c.Close()
			c = nil
		}
		next, err := e.controller(ctx)
		if err != nil {
			e.logger.Error("graph failed to compile, waiting for changes", "err", err)
			printSystemMessage(e.opts.Out, "Error: %v", err)
			return
		}
		c = next
	}
	reload()
	defer func() {
		if c != nil {
			c.Close()
		}
	}()

	tick := time.NewTicker(e.cfg.Interval())
	defer tick.Stop()
	poll := time.NewTicker(pollInterval)
	defer poll.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-poll.C:
			next, err := fingerprint(ctx, e.store)
			if err != nil {
				e.logger.Warn("failed to read graphs", "err", err)
				continue
			}
			if next == sum {
				continue
			}
			sum = next
			printSystemMessage(e.opts.Out, "Change detected, reloading '%s'.", e.opts.GraphID)
			reload()
			last = now
		case now := <-tick.C:
			if c == nil || !c.Enabled() {
				continue
			}
			if err := c.Tick(now.Sub(last)); err != nil {
				e.logger.Error("tick failed", "err", err)
			}
			last = now
		}
	}
}
