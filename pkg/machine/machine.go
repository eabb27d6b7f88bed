package machine

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/mbt/pkg/domain"
)

// Machine is the traversal state shared by stop conditions and path generators.
// It exclusively owns its history: collaborators read it and request walks or backtracks.
type Machine interface {
	SetModel(g *domain.Graph) error
	Model() *domain.Graph

	// WalkEdge takes e from the current vertex. Guards are not checked here.
	WalkEdge(e *domain.Edge) error
	// Backtrack undoes the last walked edge. It reports whether anything was undone.
	Backtrack() bool
	HasHistory() bool
	HistoryLen() int
	// LastEdge returns the most recently walked edge, nil when the history is empty.
	LastEdge() *domain.Edge
	History() []*domain.Edge

	SetBacktrack(enabled bool)
	BacktrackEnabled() bool

	CurrentVertex() *domain.Vertex
	CurrentStateName() string

	// AdmissibleEdges returns the edges that may be walked next, in index order.
	AdmissibleEdges() ([]*domain.Edge, error)

	EdgeVisits(e *domain.Edge) int
	VertexVisits(v *domain.Vertex) int
	RequirementCovered(tag string) bool
	Coverage() domain.Coverage

	Statistics() Statistics
	StatisticsCompact() string
	StatisticsString() string
	StatisticsVerbose() string
}

// DataSource is implemented by machines carrying a data space.
type DataSource interface {
	DataValue(name string) (string, error)
	Data() DataSpace
}

// FiniteStateMachine tracks the position of a walk through a model together with its
// history and coverage counters.
type FiniteStateMachine struct {
	model           *domain.Graph
	current         *domain.Vertex
	history         []*domain.Edge
	edgeVisits      map[int]int
	vertexVisits    map[int]int
	requirementHits map[string]int
	backtrack       bool

	logger *slog.Logger
	hooks  domain.LifecycleHooks
	// restore runs after an edge is undone and before OnBacktrack fires.
	restore func()
}

var _ Machine = (*FiniteStateMachine)(nil)

// NewFiniteStateMachine creates a machine without a model. Call SetModel before walking.
func NewFiniteStateMachine(opts ...Option) *FiniteStateMachine {
	cfg := newConfig(opts)
	m := &FiniteStateMachine{
		backtrack: cfg.backtrack,
		logger:    cfg.logger,
		hooks:     cfg.hooks,
	}
	m.reset()
	return m
}

func (m *FiniteStateMachine) reset() {
	m.current = nil
	m.history = nil
	m.edgeVisits = make(map[int]int)
	m.vertexVisits = make(map[int]int)
	m.requirementHits = make(map[string]int)
}

// SetModel installs g and resets the traversal state.
func (m *FiniteStateMachine) SetModel(g *domain.Graph) error {
	if g == nil {
		return &domain.InvalidModelError{Problems: []string{"no graph"}}
	}
	if g.Start() == nil || len(g.StartEdges()) == 0 {
		return &domain.InvalidModelError{Problems: []string{"model has no edges leaving the Start vertex"}}
	}
	m.model = g
	m.reset()
	m.logger.Debug("model installed", "vertices", len(g.Vertices()), "edges", len(g.Edges()))
	return nil
}

// Model returns the installed graph.
func (m *FiniteStateMachine) Model() *domain.Graph {
	return m.model
}

func (m *FiniteStateMachine) checkWalk(e *domain.Edge) error {
	if m.model == nil {
		return fmt.Errorf("walk edge: %w: no model", domain.ErrNotConfigured)
	}
	if e == nil || e.Source == nil || e.Destination == nil {
		return &domain.InvalidTransitionError{Vertex: m.current, Reason: "incomplete edge"}
	}
	if v, ok := m.model.Vertex(e.Source.Index); !ok || v != e.Source {
		return &domain.InvalidTransitionError{Label: e.Label.Navigate(), Vertex: m.current, Reason: "edge belongs to another model"}
	}
	if m.current == nil {
		if !e.Source.IsStart() {
			return &domain.InvalidTransitionError{Label: e.Label.Navigate(), Vertex: m.current, Reason: "the first edge must leave Start"}
		}
		return nil
	}
	if e.Source != m.current {
		return &domain.InvalidTransitionError{Label: e.Label.Navigate(), Vertex: m.current, Reason: "edge does not leave the current vertex"}
	}
	return nil
}

// WalkEdge implements Machine.
func (m *FiniteStateMachine) WalkEdge(e *domain.Edge) error {
	if err := m.checkWalk(e); err != nil {
		return err
	}
	m.walk(e)
	return nil
}

func (m *FiniteStateMachine) walk(e *domain.Edge) {
	m.current = e.Destination
	m.history = append(m.history, e)
	m.edgeVisits[e.Index]++
	m.vertexVisits[e.Destination.Index]++
	for _, r := range e.Requirements {
		m.requirementHits[r]++
	}
	for _, r := range e.Destination.Requirements {
		m.requirementHits[r]++
	}
	m.logger.Debug("edge walked", "edge", domain.CompleteEdgeName(e), "depth", len(m.history))
	m.emit(m.hooks.OnEdgeWalked, domain.EventEdgeWalked, e)
}

// Backtrack implements Machine. It is a logged no-op when backtracking is disabled
// or the history is empty.
func (m *FiniteStateMachine) Backtrack() bool {
	if !m.backtrack {
		m.logger.Warn("backtrack requested but backtracking is disabled")
		return false
	}
	if len(m.history) == 0 {
		m.logger.Warn("backtrack requested but history is empty")
		return false
	}
	m.unwalk()
	return true
}

func (m *FiniteStateMachine) unwalk() *domain.Edge {
	last := len(m.history) - 1
	e := m.history[last]
	m.history = m.history[:last]

	decrement(m.edgeVisits, e.Index)
	decrement(m.vertexVisits, e.Destination.Index)
	for _, r := range e.Requirements {
		decrement(m.requirementHits, r)
	}
	for _, r := range e.Destination.Requirements {
		decrement(m.requirementHits, r)
	}

	if e.Source.IsStart() {
		m.current = nil
	} else {
		m.current = e.Source
	}
	if m.restore != nil {
		m.restore()
	}
	m.logger.Debug("edge undone", "edge", domain.CompleteEdgeName(e), "depth", len(m.history))
	m.emit(m.hooks.OnBacktrack, domain.EventBacktrack, e)
	return e
}

func decrement[K comparable](counts map[K]int, key K) {
	if counts[key] <= 1 {
		delete(counts, key)
		return
	}
	counts[key]--
}

func (m *FiniteStateMachine) emit(hook func(*domain.TraversalEvent), kind domain.EventType, e *domain.Edge) {
	if hook == nil {
		return
	}
	hook(&domain.TraversalEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: kind},
		Edge:      e,
		Vertex:    m.current,
		Depth:     len(m.history),
		Coverage:  m.Coverage(),
	})
}

// HasHistory reports whether at least one edge has been walked.
func (m *FiniteStateMachine) HasHistory() bool {
	return len(m.history) > 0
}

// HistoryLen returns the number of edges on the walked path.
func (m *FiniteStateMachine) HistoryLen() int {
	return len(m.history)
}

// LastEdge implements Machine.
func (m *FiniteStateMachine) LastEdge() *domain.Edge {
	if len(m.history) == 0 {
		return nil
	}
	return m.history[len(m.history)-1]
}

// History returns a copy of the walked edges, oldest first, or nil when empty.
func (m *FiniteStateMachine) History() []*domain.Edge {
	if len(m.history) == 0 {
		return nil
	}
	return slices.Clone(m.history)
}

// SetBacktrack toggles backtracking. The history is left untouched.
func (m *FiniteStateMachine) SetBacktrack(enabled bool) {
	m.backtrack = enabled
}

// BacktrackEnabled reports whether Backtrack is permitted.
func (m *FiniteStateMachine) BacktrackEnabled() bool {
	return m.backtrack
}

// CurrentVertex returns the current vertex, nil before the first walk.
func (m *FiniteStateMachine) CurrentVertex() *domain.Vertex {
	return m.current
}

// CurrentStateName returns the label of the current vertex, or "" before the first walk.
func (m *FiniteStateMachine) CurrentStateName() string {
	if m.current == nil {
		return ""
	}
	return m.current.Label
}

// AdmissibleEdges implements Machine. A plain machine admits every edge leaving the
// current vertex, or the Start edges before the first walk.
func (m *FiniteStateMachine) AdmissibleEdges() ([]*domain.Edge, error) {
	if m.model == nil {
		return nil, fmt.Errorf("admissible edges: %w: no model", domain.ErrNotConfigured)
	}
	if m.current == nil {
		return m.model.StartEdges(), nil
	}
	return m.model.OutEdges(m.current), nil
}

// EdgeVisits returns how many times e is on the walked path.
func (m *FiniteStateMachine) EdgeVisits(e *domain.Edge) int {
	if e == nil {
		return 0
	}
	return m.edgeVisits[e.Index]
}

// VertexVisits returns how many times v was entered along the walked path.
func (m *FiniteStateMachine) VertexVisits(v *domain.Vertex) int {
	if v == nil {
		return 0
	}
	return m.vertexVisits[v.Index]
}

// RequirementCovered reports whether a visited vertex or edge carries tag.
func (m *FiniteStateMachine) RequirementCovered(tag string) bool {
	return m.requirementHits[tag] > 0
}
