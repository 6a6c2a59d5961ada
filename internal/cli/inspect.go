package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/nody/internal/compiler"
	"github.com/aretw0/nody/internal/logging"
	presentation "github.com/aretw0/nody/internal/presentation/graph"
	"github.com/aretw0/nody/internal/presentation/tui"
	"github.com/aretw0/nody/internal/validator"
	"github.com/aretw0/nody/pkg/graph"
)

// InspectOptions configures the read-only commands (validate, graph, describe).
type InspectOptions struct {
	Dir        string
	ConfigPath string
	GraphID    string
	Strict     bool
	// Markdown skips terminal rendering in describe.
	Markdown bool
}

// loadGraph compiles the requested graph without wrapping it in a controller,
// so invalid graphs can still be inspected.
func loadGraph(ctx context.Context, opts InspectOptions) (*graph.Graph, error) {
	cfg, err := LoadConfig(opts.Dir, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	logger, err := createLogger(cfg.LogLevel, false)
	if err != nil {
		return nil, err
	}
	store, closeStore := OpenStore(opts.Dir, cfg, logging.NewNop())
	defer closeStore()

	id := opts.GraphID
	if id == "" {
		if id, err = determineEntryPoint(ctx, store, opts.Dir); err != nil {
			return nil, err
		}
	}

	copts := []compiler.Option{compiler.WithLogger(logger)}
	if opts.Strict {
		copts = append(copts, compiler.WithStrictReferences())
	}
	return compiler.New(store, copts...).Compile(ctx, id)
}

// Validate prints every finding and returns the report error, if any.
func Validate(ctx context.Context, opts InspectOptions, w io.Writer) error {
	g, err := loadGraph(ctx, opts)
	if err != nil {
		return err
	}
	report := validator.ValidateGraph(g)
	for _, f := range report.Findings {
		fmt.Fprintf(w, "%s: %s\n", f.Severity, f.Error())
	}
	if err := report.Err(); err != nil {
		return err
	}
	fmt.Fprintf(w, "✓ %s is valid (%d warnings)\n", g.ID, len(report.Warnings()))
	return nil
}

// Graph writes the Mermaid flowchart of the graph.
func Graph(ctx context.Context, opts InspectOptions, w io.Writer) error {
	g, err := loadGraph(ctx, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, presentation.GenerateMermaid(g, presentation.OverlayFromGraph(g)))
	return err
}

// Describe writes a Markdown description of the graph, rendered for the terminal unless opts.Markdown.
func Describe(ctx context.Context, opts InspectOptions, w io.Writer) error {
	g, err := loadGraph(ctx, opts)
	if err != nil {
		return err
	}
	md := tui.DescribeMarkdown(g, validator.ValidateGraph(g))
	if !opts.Markdown {
		if out, err := tui.NewRenderer()(md); err == nil {
			md = out
		}
	}
	_, err = io.WriteString(w, md)
	return err
}
