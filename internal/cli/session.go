package cli

import (
	"os"

	"github.com/aretw0/nody"
	"github.com/aretw0/nody/internal/presentation/tui"
	"github.com/aretw0/nody/pkg/controller"
)

// RunSession drives the controller interactively through a nody.Runner.
func RunSession(ctx *SignalContext, e *runEnv) error {
	tui.PrintBanner(e.opts.Out)

	c, err := e.controller(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	r := nody.NewRunner(NewInterruptibleReader(e.opts.In, ctx.Done()), e.opts.Out)
	r.Delta = e.cfg.Interval()
	r.Renderer = tui.NewRenderer()

	runErr := r.Run(ctx, c)
	if ctx.Err() != nil && runErr == nil {
		runErr = ctx.Err()
	}

	logCompletion(e, c.Status(), runErr, ctx.Signal())
	return handleExecutionError(runErr)
}

// logCompletion reports where the session stopped and why.
func logCompletion(e *runEnv, st controller.Status, err error, sig os.Signal) {
	last := "-"
	if ref, ok := st.Active(); ok {
		last = ref.Name
	}
	switch {
	case sig != nil:
		e.logger.Info("session interrupted", "signal", sig.String(), "node", last)
		printSystemMessage(e.opts.Out, "Interrupted at '%s'.", last)
	case err != nil && !isInterrupted(err):
		e.logger.Error("session failed", "node", last, "err", err)
	default:
		e.logger.Debug("session finished", "node", last, "ticks", st.Ticks)
		printSystemMessage(e.opts.Out, "Session finished at '%s'.", last)
	}
}
