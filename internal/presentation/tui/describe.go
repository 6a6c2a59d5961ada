package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/nody/internal/validator"
	"github.com/aretw0/nody/pkg/graph"
)

// DescribeMarkdown renders a markdown summary of g, its referenced sub graphs
// and the findings of report (which may be nil).
func DescribeMarkdown(g *graph.Graph, report *validator.Report) string {
	var sb strings.Builder
	seen := make(map[*graph.Graph]bool)
	describeGraph(&sb, g, 1, seen)

	if report != nil {
		sb.WriteString("## Validation\n\n")
		if len(report.Findings) == 0 {
			sb.WriteString("No findings.\n")
		}
		for _, f := range report.Findings {
			fmt.Fprintf(&sb, "- **%s** %s\n", f.Severity, f.Error())
		}
	}
	return sb.String()
}

func describeGraph(sb *strings.Builder, g *graph.Graph, level int, seen map[*graph.Graph]bool) {
	if seen[g] {
		return
	}
	seen[g] = true

	kind := "graph"
	if g.IsSubGraph {
		kind = "sub graph"
	}
	fmt.Fprintf(sb, "%s %s\n\n", strings.Repeat("#", min(level, 6)), g.Name)
	fmt.Fprintf(sb, "*%s* `%s`", kind, g.ID)
	if g.Version != "" {
		fmt.Fprintf(sb, " version %s", g.Version)
	}
	sb.WriteString("\n\n")

	sb.WriteString("| Node | Type | Inputs | Outputs | Flags |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, n := range g.Nodes() {
		name := n.Name
		if n.Global {
			name += " (global)"
		}
		flags := strings.Join(n.Errors.Messages(), ", ")
		fmt.Fprintf(sb, "| %s | %s | %d | %d | %s |\n", name, n.Type, len(n.Inputs), len(n.Outputs), flags)
	}
	sb.WriteString("\n")

	conns := g.Connections()
	if len(conns) > 0 {
		sb.WriteString("Connections:\n\n")
		for _, c := range conns {
			from, to := g.NodeByID(c.OutputNodeID), g.NodeByID(c.InputNodeID)
			if from == nil || to == nil {
				continue
			}
			out := g.SocketByID(c.OutputSocketID)
			fmt.Fprintf(sb, "- %s.%s → %s\n", from.Name, out.Name, to.Name)
		}
		sb.WriteString("\n")
	}

	for _, n := range g.Nodes() {
		if n.SubGraph != nil && n.SubGraph.Graph != nil {
			describeGraph(sb, n.SubGraph.Graph, level+1, seen)
		}
	}
}
