package generators

import (
	"fmt"

	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/machine"
)

// ListEntry is one replayed step. Verify, when set, must equal the label of the
// vertex the edge leads to.
type ListEntry struct {
	Label  string
	Verify string
}

// List replays a fixed sequence of edge labels. It ignores the stop condition and
// ends when the list is exhausted.
type List struct {
	base
	entries []ListEntry
	pos     int
}

// NewList creates a List generator replaying the labels given with WithLabels.
func NewList(opts ...Option) *List {
	cfg := newConfig(opts)
	l := &List{base: newBase(cfg)}
	for _, label := range cfg.labels {
		l.entries = append(l.entries, ListEntry{Label: label})
	}
	return l
}

// NewListFromSequence creates a List generator replaying a recorded sequence,
// checking every verify label on the way.
func NewListFromSequence(seq *domain.Sequence, opts ...Option) *List {
	l := &List{base: newBase(newConfig(opts))}
	l.Load(entriesOf(seq)...)
	return l
}

func entriesOf(seq *domain.Sequence) []ListEntry {
	entries := make([]ListEntry, 0, len(seq.Steps))
	for _, s := range seq.Steps {
		entries = append(entries, ListEntry{Label: s.Navigate, Verify: s.Verify})
	}
	return entries
}

// Load replaces the replay list and rewinds it.
func (l *List) Load(entries ...ListEntry) {
	l.entries = append([]ListEntry(nil), entries...)
	l.pos = 0
}

// SetMachine binds the generator and rewinds the list.
func (l *List) SetMachine(m machine.Machine) {
	l.m = m
	l.pos = 0
}

// Remaining returns how many entries are left to replay.
func (l *List) Remaining() int {
	return len(l.entries) - l.pos
}

func (l *List) HasNext() (bool, error) {
	if err := l.check(); err != nil {
		return false, err
	}
	return l.pos < len(l.entries), nil
}

// Next walks the lowest-index admissible edge matching the next entry. The machine is
// not touched when no edge matches.
func (l *List) Next() (domain.Step, error) {
	if err := l.check(); err != nil {
		return domain.Step{}, err
	}
	current := l.m.CurrentVertex()
	if l.pos >= len(l.entries) {
		return domain.Step{}, &domain.InvalidTransitionError{Vertex: current, Reason: "replay list is exhausted"}
	}
	entry := l.entries[l.pos]

	edges, err := l.m.AdmissibleEdges()
	if err != nil {
		return domain.Step{}, err
	}
	var named, chosen *domain.Edge
	for _, e := range edges {
		if !e.Matches(entry.Label) {
			continue
		}
		if named == nil {
			named = e
		}
		if entry.Verify == "" || e.Destination.Label == entry.Verify {
			chosen = e
			break
		}
	}
	switch {
	case named == nil:
		return domain.Step{}, &domain.InvalidTransitionError{
			Label: entry.Label, Vertex: current, Reason: "no admissible edge carries this label",
		}
	case chosen == nil:
		return domain.Step{}, &domain.InvalidTransitionError{
			Label: entry.Label, Vertex: current,
			Reason: fmt.Sprintf("expected to reach %q but it leads to %q", entry.Verify, named.Destination.Label),
		}
	}

	step, err := l.walk(chosen)
	if err != nil {
		return domain.Step{}, err
	}
	l.pos++
	return step, nil
}

func (l *List) String() string { return "List" }
