package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the weft banner and version to w.
func PrintBanner(w io.Writer, version string) {
	o := termenv.NewOutput(w)
	// Teal to indigo
	lines := []struct{ text, color string }{
		{" __      __ ___  ___  _____ ", "#2dd4bf"},
		{" \\ \\ /\\ / // _ \\| __||_   _|", "#38bdf8"},
		{"  \\ V  V /|  __/| _|   | |  ", "#60a5fa"},
		{"   \\_/\\_/  \\___||_|    |_|  ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, o.String(l.text).Foreground(o.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, o.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
