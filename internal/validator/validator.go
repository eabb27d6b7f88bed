package validator

import (
	"fmt"

	"github.com/aretw0/mbt/pkg/domain"
)

// ValidateModel checks the structural invariants generation relies on: a Start vertex
// with at least one edge and every state reachable from Start.
// All problems are reported together in a *domain.InvalidModelError.
func ValidateModel(g *domain.Graph) error {
	if g == nil {
		return &domain.InvalidModelError{Problems: []string{"no graph"}}
	}
	start := g.Start()
	if start == nil {
		return &domain.InvalidModelError{Problems: []string{"missing Start vertex"}}
	}

	var problems []string
	if len(g.StartEdges()) == 0 {
		problems = append(problems, "no edge leaves the Start vertex")
	}

	visited := Reachable(g)
	for _, v := range g.States() {
		if !visited[v.Index] {
			problems = append(problems, fmt.Sprintf("vertex %s is unreachable from Start", domain.CompleteVertexName(v)))
		}
	}

	if len(problems) > 0 {
		return &domain.InvalidModelError{Problems: problems}
	}
	return nil
}

// Reachable crawls the graph breadth-first from Start, ignoring guards, and returns the
// indices of the vertices it reaches.
func Reachable(g *domain.Graph) map[int]bool {
	visited := make(map[int]bool)
	start := g.Start()
	if start == nil {
		return visited
	}
	queue := []*domain.Vertex{start}
	visited[start.Index] = true
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, e := range g.OutEdges(current) {
			if !visited[e.Destination.Index] {
				visited[e.Destination.Index] = true
				queue = append(queue, e.Destination)
			}
		}
	}
	return visited
}

// DeadEnds returns the states without outgoing edges. They are legal, but a walk that
// reaches one stops there unless backtracking is enabled.
func DeadEnds(g *domain.Graph) []*domain.Vertex {
	var ends []*domain.Vertex
	for _, v := range g.States() {
		if len(g.OutEdges(v)) == 0 {
			ends = append(ends, v)
		}
	}
	return ends
}
