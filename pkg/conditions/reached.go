package conditions

import "github.com/aretw0/mbt/pkg/machine"

// reached latches once its probe succeeds, so backtracking away does not undo it.
// Rebinding clears the latch.
type reached struct {
	bound
	target string
	kind   string
	probe  func(m machine.Machine, target string) bool
	hit    bool
}

func (r *reached) SetMachine(m machine.Machine) {
	r.m = m
	r.hit = false
}

func (r *reached) IsFulfilled() bool {
	if r.hit {
		return true
	}
	if !r.ready() {
		return false
	}
	r.hit = r.probe(r.m, r.target)
	return r.hit
}

func (r *reached) Fulfilment() float64 {
	if r.IsFulfilled() {
		return 1
	}
	return 0
}

func (r *reached) String() string {
	return r.kind + "=" + r.target
}

// ReachedEdge is fulfilled once an edge identified by name has been walked.
type ReachedEdge struct {
	reached
}

// NewReachedEdge creates a ReachedEdge. name matches the edge name or its navigate label.
func NewReachedEdge(name string) *ReachedEdge {
	return &ReachedEdge{reached{target: name, kind: "ReachedEdge", probe: func(m machine.Machine, name string) bool {
		for _, e := range m.Model().FindEdges(name) {
			if m.EdgeVisits(e) > 0 {
				return true
			}
		}
		return false
	}}}
}

// ReachedState is fulfilled once a vertex with the given label has been visited.
type ReachedState struct {
	reached
}

// NewReachedState creates a ReachedState.
func NewReachedState(label string) *ReachedState {
	return &ReachedState{reached{target: label, kind: "ReachedState", probe: func(m machine.Machine, label string) bool {
		for _, v := range m.Model().FindVertices(label) {
			if m.VertexVisits(v) > 0 {
				return true
			}
		}
		return false
	}}}
}

// ReachedRequirement is fulfilled once the requirement tag has been covered.
type ReachedRequirement struct {
	reached
}

// NewReachedRequirement creates a ReachedRequirement.
func NewReachedRequirement(tag string) *ReachedRequirement {
	return &ReachedRequirement{reached{target: tag, kind: "ReachedRequirement", probe: func(m machine.Machine, tag string) bool {
		return m.RequirementCovered(tag)
	}}}
}
