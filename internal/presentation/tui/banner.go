package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Nody.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Teal/Cyan)
	lines := []struct {
		text  string
		color string
	}{
		{"  _   _           _       ", "#2dd4bf"},
		{" | \\ | | ___   __| |_   _ ", "#22d3ee"},
		{" |  \\| |/ _ \\ / _` | | | |", "#38bdf8"},
		{" | |\\  | (_) | (_| | |_| |", "#60a5fa"},
		{" |_| \\_|\\___/ \\__,_|\\__, |", "#818cf8"},
		{"                    |___/ ", "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
