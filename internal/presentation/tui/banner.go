package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the inicheck banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"  _       _      _               _    ", "#818cf8"},
		{" (_)_ __ (_) ___| |__   ___  ___| | __", "#a78bfa"},
		{" | | '_ \\| |/ __| '_ \\ / _ \\/ __| |/ /", "#c084fc"},
		{" | | | | | | (__| | | |  __/ (__|   < ", "#e879f9"},
		{" |_|_| |_|_|\\___|_| |_|\\___|\\___|_|\\_\\", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
