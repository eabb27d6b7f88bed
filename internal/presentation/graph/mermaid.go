package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/machine"
)

// Overlay holds traversal data to visualize on the graph.
// Elements are identified by their graph index.
type Overlay struct {
	VisitedVertices []int
	WalkedEdges     []int
	Current         *domain.Vertex
}

// OverlayFrom captures the coverage of m.
func OverlayFrom(m machine.Machine) *Overlay {
	o := &Overlay{Current: m.CurrentVertex()}
	g := m.Model()
	if g == nil {
		return o
	}
	for _, v := range g.Vertices() {
		if m.VertexVisits(v) > 0 {
			o.VisitedVertices = append(o.VisitedVertices, v.Index)
		}
	}
	for _, e := range g.Edges() {
		if m.EdgeVisits(e) > 0 {
			o.WalkedEdges = append(o.WalkedEdges, e.Index)
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of g.
// Start is drawn as a circle, states as rectangles, and states carrying requirement
// tags as subroutines. Guarded edges are dotted. Overlay styles are applied if provided.
func GenerateMermaid(g *domain.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, v := range g.Vertices() {
		opener, closer := "[", "]"
		switch {
		case v.IsStart():
			opener, closer = "((", "))"
		case len(v.Requirements) > 0:
			opener, closer = "[[", "]]"
		}
		text := escape(v.Label)
		if len(v.Requirements) > 0 {
			text += " <br/> " + escape(strings.Join(v.Requirements, ", "))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(v), opener, text, closer)
	}

	// Mermaid numbers links in declaration order; linkStyle refers to that position.
	links := make(map[int]int, len(g.Edges()))
	for i, e := range g.Edges() {
		links[e.Index] = i
		text := escape(e.Label.Raw)
		arrow := fmt.Sprintf("-- \"%s\" -->", text)
		if e.Label.Guard != "" {
			arrow = fmt.Sprintf("-. \"%s\" .->", text)
		}
		if text == "" {
			arrow = "-->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(e.Source), arrow, nodeID(e.Destination))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, idx := range overlay.VisitedVertices {
			fmt.Fprintf(&sb, "    class v%d visited;\n", idx)
		}
		if overlay.Current != nil {
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(overlay.Current))
		}
		for _, idx := range overlay.WalkedEdges {
			if pos, ok := links[idx]; ok {
				fmt.Fprintf(&sb, "    linkStyle %d stroke:#01579b,stroke-width:3px;\n", pos)
			}
		}
	}

	return sb.String()
}

func nodeID(v *domain.Vertex) string {
	return fmt.Sprintf("v%d", v.Index)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
