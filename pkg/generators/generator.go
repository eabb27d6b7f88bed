package generators

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/aretw0/mbt/pkg/conditions"
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/machine"
)

// PathGenerator produces the next test step.
type PathGenerator interface {
	// SetMachine binds the generator. It is called again on every reconfiguration.
	SetMachine(m machine.Machine)
	SetStopCondition(c conditions.StopCondition)

	// HasNext reports whether Next can produce a step. It may backtrack the machine
	// out of dead ends when backtracking is enabled.
	HasNext() (bool, error)
	// Next produces one step. HasNext is the only place the stop condition is consulted.
	Next() (domain.Step, error)
	String() string
}

// base holds what traversal generators share: the bound machine and condition,
// the admissibility loop with dead-end recovery, and the walk itself.
type base struct {
	m      machine.Machine
	cond   conditions.StopCondition
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	rng    *rand.Rand

	// exhausted holds the edges backtracked out of since the last edge walked for
	// the first time. They are not taken again until then.
	exhausted map[int]bool
	// walked holds every edge walked since the machine was bound.
	walked map[int]bool
}

func newBase(cfg config) base {
	return base{
		logger:    cfg.logger,
		hooks:     cfg.hooks,
		rng:       cfg.rng,
		exhausted: make(map[int]bool),
		walked:    make(map[int]bool),
	}
}

func (b *base) SetMachine(m machine.Machine) {
	b.m = m
	clear(b.exhausted)
	clear(b.walked)
}

func (b *base) SetStopCondition(c conditions.StopCondition) {
	b.cond = c
}

func (b *base) check() error {
	if b.m == nil {
		return fmt.Errorf("generator: %w: no machine", domain.ErrNotConfigured)
	}
	if b.m.Model() == nil {
		return fmt.Errorf("generator: %w: no model", domain.ErrNotConfigured)
	}
	return nil
}

func (b *base) stopped() bool {
	return b.cond != nil && b.cond.IsFulfilled()
}

// admissible returns the admissible edges that are not exhausted, backtracking while
// there are none and the machine permits it. Every edge undone this way is marked
// exhausted, so the loop is bounded by the history length and a walk cannot keep
// returning into the same dead end. An empty result means a dead end.
func (b *base) admissible() ([]*domain.Edge, error) {
	for {
		edges, err := b.m.AdmissibleEdges()
		if err != nil {
			return nil, err
		}
		if edges = b.open(edges); len(edges) > 0 {
			return edges, nil
		}
		if !b.m.BacktrackEnabled() || !b.m.HasHistory() {
			return nil, nil
		}
		last := b.m.LastEdge()
		b.logger.Debug("dead end, backtracking", "vertex", domain.CompleteVertexName(b.m.CurrentVertex()))
		if !b.m.Backtrack() {
			return nil, nil
		}
		b.exhausted[last.Index] = true
	}
}

// open filters out the exhausted edges.
func (b *base) open(edges []*domain.Edge) []*domain.Edge {
	if len(b.exhausted) == 0 {
		return edges
	}
	kept := make([]*domain.Edge, 0, len(edges))
	for _, e := range edges {
		if !b.exhausted[e.Index] {
			kept = append(kept, e)
		}
	}
	return kept
}

func (b *base) hasNext() (bool, error) {
	if err := b.check(); err != nil {
		return false, err
	}
	if b.stopped() {
		return false, nil
	}
	edges, err := b.admissible()
	if err != nil {
		return false, err
	}
	return len(edges) > 0, nil
}

func (b *base) deadEnd() error {
	v := b.m.CurrentVertex()
	b.logger.Debug("dead end", "vertex", domain.CompleteVertexName(v))
	if b.hooks.OnDeadEnd != nil {
		b.hooks.OnDeadEnd(&domain.DeadEndEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventDeadEnd},
			Vertex:    v,
		})
	}
	return &domain.DeadEndError{Vertex: v}
}

// next walks the edge picked by choose among the admissible ones.
func (b *base) next(choose func([]*domain.Edge) *domain.Edge) (domain.Step, error) {
	if err := b.check(); err != nil {
		return domain.Step{}, err
	}
	edges, err := b.admissible()
	if err != nil {
		return domain.Step{}, err
	}
	if len(edges) == 0 {
		return domain.Step{}, b.deadEnd()
	}
	return b.walk(choose(edges))
}

func (b *base) walk(e *domain.Edge) (domain.Step, error) {
	if err := b.m.WalkEdge(e); err != nil {
		return domain.Step{}, err
	}
	if !b.walked[e.Index] {
		b.walked[e.Index] = true
		clear(b.exhausted)
	}
	return domain.Step{
		Navigate: e.Label.Raw,
		Verify:   e.Destination.Label,
		Edge:     e,
		Vertex:   e.Destination,
	}, nil
}

func (b *base) random(edges []*domain.Edge) *domain.Edge {
	return edges[b.rng.IntN(len(edges))]
}
