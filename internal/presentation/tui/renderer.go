package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/machine"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// width <= 0 keeps glamour's default word wrap.
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return r.Render, nil
}

// StatisticsMarkdown formats a coverage report as a markdown document.
// verbose adds the lists of elements not covered yet.
func StatisticsMarkdown(title string, s machine.Statistics, verbose bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	sb.WriteString("| Coverage | Covered | Total | Ratio |\n")
	sb.WriteString("|---|---|---|---|\n")
	row := func(name string, covered, total int) {
		fmt.Fprintf(&sb, "| %s | %d | %d | %s |\n", name, covered, total, machine.Percent(covered, total))
	}
	row("Edges", s.EdgesCovered, s.EdgesTotal)
	row("States", s.StatesCovered, s.StatesTotal)
	row("Requirements", s.RequirementsCovered, s.RequirementsTotal)
	fmt.Fprintf(&sb, "\nTest sequence length: **%d**\n", s.Length)

	if !verbose {
		return sb.String()
	}
	section := func(name string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", name)
		for _, item := range items {
			fmt.Fprintf(&sb, "- `%s`\n", item)
		}
	}
	var edges, states []string
	for _, e := range s.UnvisitedEdges {
		edges = append(edges, domain.CompleteEdgeName(e))
	}
	for _, v := range s.UnvisitedStates {
		states = append(states, domain.CompleteVertexName(v))
	}
	section("Unvisited Edges", edges)
	section("Unvisited States", states)
	section("Uncovered Requirements", s.UncoveredRequirements)
	return sb.String()
}
