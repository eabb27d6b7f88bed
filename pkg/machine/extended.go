package machine

import (
	"fmt"
	"strings"

	"github.com/aretw0/mbt/pkg/domain"
)

// ExtendedFiniteStateMachine adds a data space to the plain machine. Edge guards gate
// admissibility and edge actions update the data space when the edge is walked.
type ExtendedFiniteStateMachine struct {
	*FiniteStateMachine

	evaluator Evaluator
	initial   DataSpace
	data      DataSpace
	snapshots []DataSpace
}

var (
	_ Machine    = (*ExtendedFiniteStateMachine)(nil)
	_ DataSource = (*ExtendedFiniteStateMachine)(nil)
)

// NewExtendedFiniteStateMachine creates an extended machine without a model.
func NewExtendedFiniteStateMachine(opts ...Option) *ExtendedFiniteStateMachine {
	cfg := newConfig(opts)
	m := &ExtendedFiniteStateMachine{
		FiniteStateMachine: NewFiniteStateMachine(opts...),
		evaluator:          cfg.evaluator,
		initial:            cfg.initialData.Clone(),
		data:               cfg.initialData.Clone(),
	}
	m.restore = m.restoreData
	return m
}

// SetModel installs g, resets the traversal state and restores the initial data space.
func (m *ExtendedFiniteStateMachine) SetModel(g *domain.Graph) error {
	if err := m.FiniteStateMachine.SetModel(g); err != nil {
		return err
	}
	m.data = m.initial.Clone()
	m.snapshots = nil
	return nil
}

// DataValue returns the current value of a variable.
func (m *ExtendedFiniteStateMachine) DataValue(name string) (string, error) {
	val, ok := m.data[name]
	if !ok {
		return "", &domain.UnknownVariableError{Name: name}
	}
	return val, nil
}

// Data returns a copy of the data space.
func (m *ExtendedFiniteStateMachine) Data() DataSpace {
	return m.data.Clone()
}

// EvaluateGuard evaluates the guard of e against the current data space.
// Edges without a guard are always admissible. The data space is not modified.
func (m *ExtendedFiniteStateMachine) EvaluateGuard(e *domain.Edge) (bool, error) {
	if e.Label.Guard == "" {
		return true, nil
	}
	ok, err := m.evaluator.Guard(e.Label.Guard, m.data)
	if err != nil {
		return false, fmt.Errorf("guard of %s: %w", domain.CompleteEdgeName(e), err)
	}
	return ok, nil
}

// AdmissibleEdges returns the candidate edges whose guard holds.
func (m *ExtendedFiniteStateMachine) AdmissibleEdges() ([]*domain.Edge, error) {
	candidates, err := m.FiniteStateMachine.AdmissibleEdges()
	if err != nil {
		return nil, err
	}
	admissible := make([]*domain.Edge, 0, len(candidates))
	for _, e := range candidates {
		ok, err := m.EvaluateGuard(e)
		if err != nil {
			return nil, err
		}
		if ok {
			admissible = append(admissible, e)
		}
	}
	return admissible, nil
}

// WalkEdge takes e and executes its action. A failing action leaves the machine unchanged.
func (m *ExtendedFiniteStateMachine) WalkEdge(e *domain.Edge) error {
	if err := m.checkWalk(e); err != nil {
		return err
	}
	next := m.data
	if e.Label.Action != "" {
		var err error
		next, err = m.evaluator.Apply(e.Label.Action, m.data)
		if err != nil {
			return fmt.Errorf("action of %s: %w", domain.CompleteEdgeName(e), err)
		}
	}
	m.snapshots = append(m.snapshots, m.data)
	m.data = next
	m.walk(e)
	return nil
}

// restoreData puts back the data space found before the undone edge.
func (m *ExtendedFiniteStateMachine) restoreData() {
	last := len(m.snapshots) - 1
	m.data = m.snapshots[last]
	m.snapshots = m.snapshots[:last]
}

// StatisticsVerbose appends the data space to the verbose report.
func (m *ExtendedFiniteStateMachine) StatisticsVerbose() string {
	var sb strings.Builder
	sb.WriteString(m.Statistics().Verbose())
	for _, name := range m.data.Names() {
		fmt.Fprintf(&sb, "Data: %s=%s\n", name, m.data[name])
	}
	return sb.String()
}
