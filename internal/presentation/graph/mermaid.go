package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/nody/pkg/domain"
	"github.com/aretw0/nody/pkg/graph"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	// ActivePath is the chain of active nodes from the root down through
	// running sub graphs. The last entry is styled as current.
	ActivePath []*graph.Node
	Globals    []*graph.Node
}

// OverlayFromGraph captures the live traversal state of g and its running sub graphs.
func OverlayFromGraph(g *graph.Graph) *GraphOverlay {
	o := &GraphOverlay{ActivePath: g.Path()}
	for cur := g; cur != nil; cur = cur.ActiveSubGraph() {
		o.Globals = append(o.Globals, cur.ActiveGlobalNodes()...)
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart for g. Referenced sub graphs
// are drawn as nested subgraph blocks.
// It applies semantic styling:
// - Start/Enter: ((Circle))
// - Exit: (((Double circle)))
// - SubGraph: [[Subroutine]]
// - SwitchBack: {{Hexagon}}
// - General: [Rectangle]
// It also applies overlay styles (Active/Current/Global) if provided.
func GenerateMermaid(g *graph.Graph, overlay *GraphOverlay) string {
	r := &renderer{ids: make(map[*graph.Node]string), prefixes: make(map[*graph.Graph]string)}
	r.sb.WriteString("graph TD\n")
	r.graph(g, "    ")

	if overlay != nil {
		r.sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		r.sb.WriteString("    classDef active fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		r.sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		r.sb.WriteString("    classDef global fill:#e8f5e9,stroke:#2e7d32,stroke-dasharray:4,color:#000;\n")

		for i, n := range overlay.ActivePath {
			id, ok := r.ids[n]
			if !ok {
				continue
			}
			class := "active"
			if i == len(overlay.ActivePath)-1 {
				class = "current"
			}
			fmt.Fprintf(&r.sb, "    class %s %s;\n", id, class)
		}
		for _, n := range overlay.Globals {
			if id, ok := r.ids[n]; ok {
				fmt.Fprintf(&r.sb, "    class %s global;\n", id)
			}
		}
	}

	return r.sb.String()
}

type renderer struct {
	sb       strings.Builder
	ids      map[*graph.Node]string
	prefixes map[*graph.Graph]string
}

func (r *renderer) graph(g *graph.Graph, indent string) {
	if _, done := r.prefixes[g]; done {
		return
	}
	prefix := fmt.Sprintf("g%d_", len(r.prefixes))
	r.prefixes[g] = prefix

	nodes := g.Nodes()
	for _, n := range nodes {
		r.ids[n] = prefix + sanitizeMermaidID(n.ID)
	}

	for _, n := range nodes {
		opener, closer := shape(n.Type)
		label := n.Name
		if n.Global {
			label += " (global)"
		}
		fmt.Fprintf(&r.sb, "%s%s%s\"%s\"%s\n", indent, r.ids[n], opener, escapeLabel(label), closer)
	}

	for _, c := range g.Connections() {
		from, to := g.NodeByID(c.OutputNodeID), g.NodeByID(c.InputNodeID)
		if from == nil || to == nil {
			continue
		}
		arrow := "-->"
		if s := g.SocketByID(c.OutputSocketID); s != nil && len(from.Outputs) > 1 {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(s.Name))
		}
		fmt.Fprintf(&r.sb, "%s%s %s %s\n", indent, r.ids[from], arrow, r.ids[to])
	}

	for _, n := range nodes {
		if n.SubGraph == nil || n.SubGraph.Graph == nil {
			continue
		}
		child := n.SubGraph.Graph
		if _, done := r.prefixes[child]; !done {
			fmt.Fprintf(&r.sb, "%ssubgraph %s [\"%s\"]\n", indent, fmt.Sprintf("g%d", len(r.prefixes)), escapeLabel(child.Name))
			r.graph(child, indent+"    ")
			fmt.Fprintf(&r.sb, "%send\n", indent)
		}
		if entry := child.EntryNode(); entry != nil {
			fmt.Fprintf(&r.sb, "%s%s -.-> %s\n", indent, r.ids[n], r.ids[entry])
		}
	}
}

func shape(t domain.NodeType) (string, string) {
	switch t {
	case domain.NodeTypeStart, domain.NodeTypeEnter:
		return "((", "))"
	case domain.NodeTypeExit:
		return "(((", ")))"
	case domain.NodeTypeSubGraph:
		return "[[", "]]"
	case domain.NodeTypeSwitchBack:
		return "{{", "}}"
	}
	return "[", "]"
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
