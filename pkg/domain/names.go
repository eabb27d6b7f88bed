package domain

import "fmt"

// CompleteVertexName describes a vertex with its index, for logs and reports.
func CompleteVertexName(v *Vertex) string {
	if v == nil {
		return "<undefined>"
	}
	return fmt.Sprintf("'%s', INDEX=%d", v.Label, v.Index)
}

// CompleteEdgeName describes an edge together with its source and destination.
func CompleteEdgeName(e *Edge) string {
	if e == nil {
		return "<undefined>"
	}
	return fmt.Sprintf("'%s', INDEX=%d (%s -> %s)",
		e.Label.Navigate(), e.Index, CompleteVertexName(e.Source), CompleteVertexName(e.Destination))
}
