package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"           _     _   ", "#818cf8"},
		{"  _ __ ___ | |__ | |_ ", "#a78bfa"},
		{" | '_ ` _ \\| '_ \\| __|", "#c084fc"},
		{" | | | | | | |_) | |_ ", "#e879f9"},
		{" |_| |_| |_|_.__/ \\__|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
