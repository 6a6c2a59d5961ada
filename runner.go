package nody

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/nody/pkg/controller"
)

// Runner drives a controller from line commands using provided IO.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
//
// Commands:
//
//	next [output]   continue from the active node (empty line = next 0)
//	tick [n]        run n ticks (default 1)
//	goto <name>     activate a node by name
//	id <id>         activate a node by id
//	status          print the active path
//	help            list commands
//	quit | exit     stop
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	// Delta is the frame time passed to each tick.
	Delta    time.Duration
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms help text before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

const runnerHelp = `**Commands**

- *next [output]*: continue from the active node (empty line = next 0)
- *tick [n]*: run n ticks
- *goto <name>* / *id <id>*: activate a node
- *status*: print the active path
- *quit*: stop
`

// NewRunner creates a new Runner over in and out.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

// Run executes the command loop until quit, EOF or ctx cancellation.
// An unstarted controller is ticked once first so the entry node is active.
func (r *Runner) Run(ctx context.Context, c *controller.Controller) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewScanner(r.Input)

	if !r.Headless {
		fmt.Fprintf(r.Output, "--- Nody Runner (%s) ---\n", c.Name())
	}
	if !c.Status().Started {
		if err := c.Tick(r.Delta); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}
	r.printPath(c)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		if !lines.Scan() {
			if err := lines.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			return nil
		}

		fields := strings.Fields(lines.Text())
		cmd, arg := "next", ""
		if len(fields) > 0 {
			cmd = strings.ToLower(fields[0])
		}
		if len(fields) > 1 {
			arg = strings.Join(fields[1:], " ")
		}

		var err error
		switch cmd {
		case "quit", "exit", "q":
			if !r.Headless {
				fmt.Fprintln(r.Output, "Bye!")
			}
			return nil
		case "help", "?":
			r.printHelp()
			continue
		case "status", "s":
		case "next", "n":
			err = r.next(c, arg)
		case "tick", "t":
			err = r.tick(c, arg)
		case "goto", "g":
			err = c.GoToNodeByName(arg)
		case "id":
			err = c.GoToNodeByID(arg)
		default:
			fmt.Fprintf(r.Output, "unknown command %q (try help)\n", cmd)
			continue
		}
		if err != nil {
			fmt.Fprintf(r.Output, "error: %v\n", err)
			continue
		}
		r.printPath(c)
	}
}

func (r *Runner) next(c *controller.Controller, arg string) error {
	output := 0
	if arg != "" {
		var err error
		if output, err = strconv.Atoi(arg); err != nil {
			return fmt.Errorf("output %q is not a number", arg)
		}
	}
	return c.Advance(output)
}

func (r *Runner) tick(c *controller.Controller, arg string) error {
	n := 1
	if arg != "" {
		var err error
		if n, err = strconv.Atoi(arg); err != nil || n < 1 {
			return fmt.Errorf("tick count %q is not a positive number", arg)
		}
	}
	for i := 0; i < n; i++ {
		if err := c.Tick(r.Delta); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) printPath(c *controller.Controller) {
	st := c.Status()
	names := make([]string, 0, len(st.Path))
	for _, n := range st.Path {
		names = append(names, n.Name)
	}
	if len(names) == 0 {
		fmt.Fprintln(r.Output, "@ (no active node)")
		return
	}
	fmt.Fprintf(r.Output, "@ %s\n", strings.Join(names, " > "))
}

func (r *Runner) printHelp() {
	out := runnerHelp
	if r.Renderer != nil {
		if rendered, err := r.Renderer(runnerHelp); err == nil {
			out = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(out))
}
