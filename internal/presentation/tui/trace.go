package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/nody/pkg/domain"
	"github.com/muesli/termenv"
)

// TraceHooks prints a coloured line per traversal event to w. Wiring events
// are not traced.
func TraceHooks(w io.Writer, p termenv.Profile) domain.LifecycleHooks {
	paint := func(s, color string) termenv.Style {
		return p.String(s).Foreground(p.Color(color))
	}
	return domain.LifecycleHooks{
		OnNodeActivated: func(e *domain.NodeEvent) {
			marker := paint("→", "#22c55e")
			if e.Global {
				marker = paint("◇", "#14b8a6")
			}
			fmt.Fprintf(w, "%s %s %s\n", marker, e.NodeName, paint(fmt.Sprintf("[%s/%s]", e.GraphName, e.NodeType), "#6b7280"))
		},
		OnNodeDeactivated: func(e *domain.NodeEvent) {
			fmt.Fprintf(w, "%s %s\n", paint("←", "#6b7280"), paint(e.NodeName, "#6b7280"))
		},
		OnSubGraphChanged: func(e *domain.SubGraphEvent) {
			if e.SubGraphID == "" {
				fmt.Fprintf(w, "%s leave sub graph (%s)\n", paint("⤴", "#a78bfa"), e.GraphName)
				return
			}
			fmt.Fprintf(w, "%s enter sub graph %s\n", paint("⤵", "#a78bfa"), e.SubGraphName)
		},
		OnLoopDetected: func(e *domain.LoopEvent) {
			fmt.Fprintf(w, "%s loop detected in %s after %d hops\n", paint("✖", "#ef4444"), e.GraphName, e.Hops)
		},
	}
}
