package generators

import (
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/machine"
)

// guardEvaluator is implemented by machines whose edges carry guards.
type guardEvaluator interface {
	EvaluateGuard(e *domain.Edge) (bool, error)
}

// targetWalker heads for the nearest edge accepted by target.
//
// It searches breadth-first from the current vertex. The first hop is restricted to
// the admissible edges; deeper guards are evaluated against the current data space,
// and a guard that cannot be evaluated yet is assumed to hold. Vertices are expanded
// in breadth-first order and their out-edges in index order, so among equally near
// targets the first one found wins. Only the first edge of the path is walked; the
// search is repeated on every step. Exhausted edges are neither crossed nor targeted.
// When nothing is reachable it picks at random.
type targetWalker struct {
	base
	target func(m machine.Machine, e *domain.Edge) bool
}

func (w *targetWalker) HasNext() (bool, error) {
	return w.hasNext()
}

func (w *targetWalker) Next() (domain.Step, error) {
	return w.next(w.choose)
}

func (w *targetWalker) choose(admissible []*domain.Edge) *domain.Edge {
	if e := w.search(admissible); e != nil {
		return e
	}
	w.logger.Debug("no uncovered target reachable, choosing at random",
		"vertex", domain.CompleteVertexName(w.m.CurrentVertex()))
	return w.random(admissible)
}

func (w *targetWalker) search(admissible []*domain.Edge) *domain.Edge {
	type hop struct {
		v     *domain.Vertex
		first *domain.Edge
	}
	origin := w.m.CurrentVertex()
	if origin == nil {
		origin = w.m.Model().Start()
	}
	seen := map[int]bool{origin.Index: true}
	queue := []hop{{v: origin}}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		edges := admissible
		if h.first != nil {
			edges = w.traversable(h.v)
		}
		for _, e := range edges {
			if w.exhausted[e.Index] {
				continue
			}
			first := h.first
			if first == nil {
				first = e
			}
			if w.target(w.m, e) {
				return first
			}
			if !seen[e.Destination.Index] {
				seen[e.Destination.Index] = true
				queue = append(queue, hop{v: e.Destination, first: first})
			}
		}
	}
	return nil
}

func (w *targetWalker) traversable(v *domain.Vertex) []*domain.Edge {
	out := w.m.Model().OutEdges(v)
	g, ok := w.m.(guardEvaluator)
	if !ok {
		return out
	}
	edges := make([]*domain.Edge, 0, len(out))
	for _, e := range out {
		if holds, err := g.EvaluateGuard(e); err != nil || holds {
			edges = append(edges, e)
		}
	}
	return edges
}

// ShortestPath walks towards the nearest edge not walked yet, or leading to a vertex
// not visited yet.
type ShortestPath struct {
	targetWalker
}

// NewShortestPath creates a ShortestPath generator.
func NewShortestPath(opts ...Option) *ShortestPath {
	return &ShortestPath{targetWalker{base: newBase(newConfig(opts)), target: uncovered}}
}

func (s *ShortestPath) String() string { return "ShortestPath" }

func uncovered(m machine.Machine, e *domain.Edge) bool {
	return m.EdgeVisits(e) == 0 || m.VertexVisits(e.Destination) == 0
}

// Requirements walks towards the nearest edge that carries, or leads to a vertex that
// carries, an uncovered requirement tag.
type Requirements struct {
	targetWalker
}

// NewRequirements creates a Requirements generator.
func NewRequirements(opts ...Option) *Requirements {
	return &Requirements{targetWalker{base: newBase(newConfig(opts)), target: uncoveredRequirement}}
}

func (r *Requirements) String() string { return "Requirements" }

func uncoveredRequirement(m machine.Machine, e *domain.Edge) bool {
	for _, tag := range e.Requirements {
		if !m.RequirementCovered(tag) {
			return true
		}
	}
	for _, tag := range e.Destination.Requirements {
		if !m.RequirementCovered(tag) {
			return true
		}
	}
	return false
}
