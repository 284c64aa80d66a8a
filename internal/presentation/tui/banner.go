package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the routechain banner and version to w.
func PrintBanner(w io.Writer, version string) {
	o := termenv.NewOutput(w)
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	lines := []struct{ text, color string }{
		{"                 _             _       _", "#818cf8"},
		{"  _ __ ___  _  _| |_ ___   ___| |_  __ _(_)_ _", "#a78bfa"},
		{" | '_/ _ \\| || |  _/ -_) / _|| ' \\/ _` | | ' \\", "#c084fc"},
		{" |_| \\___/ \\_,_|\\__\\___| \\__||_||_\\__,_|_|_||_|", "#f472b6"},
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
