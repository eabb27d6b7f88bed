package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventEdgeWalked EventType = "edge_walked"
	EventBacktrack  EventType = "backtrack"
	EventDeadEnd    EventType = "dead_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// Coverage is a snapshot of the coverage counters at the time of an event.
type Coverage struct {
	EdgesCovered        int `json:"edges_covered"`
	EdgesTotal          int `json:"edges_total"`
	StatesCovered       int `json:"states_covered"`
	StatesTotal         int `json:"states_total"`
	RequirementsCovered int `json:"requirements_covered"`
	RequirementsTotal   int `json:"requirements_total"`
}

// TraversalEvent is emitted when an edge is walked or undone.
type TraversalEvent struct {
	EventBase
	Edge     *Edge    `json:"-"`
	Vertex   *Vertex  `json:"-"`
	Depth    int      `json:"depth"`
	Coverage Coverage `json:"coverage"`
}

// DeadEndEvent is emitted when generation cannot continue from a vertex.
type DeadEndEvent struct {
	EventBase
	Vertex *Vertex `json:"-"`
}

// LifecycleHooks defines callbacks for generation observability.
// Hooks run synchronously on the generating goroutine.
type LifecycleHooks struct {
	OnEdgeWalked func(*TraversalEvent)
	OnBacktrack  func(*TraversalEvent)
	OnDeadEnd    func(*DeadEndEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnEdgeWalked: chain(h.OnEdgeWalked, other.OnEdgeWalked),
		OnBacktrack:  chain(h.OnBacktrack, other.OnBacktrack),
		OnDeadEnd:    chain(h.OnDeadEnd, other.OnDeadEnd),
	}
}

func chain[T any](a, b func(T)) func(T) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ev T) {
		a(ev)
		b(ev)
	}
}
