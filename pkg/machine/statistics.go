package machine

import (
	"fmt"
	"strings"

	"github.com/aretw0/mbt/pkg/domain"
)

// Statistics is the coverage report of a machine, computed on demand.
type Statistics struct {
	domain.Coverage
	Length                int
	UnvisitedEdges        []*domain.Edge
	UnvisitedStates       []*domain.Vertex
	UncoveredRequirements []string
}

// Coverage counts the covered elements of the model.
func (m *FiniteStateMachine) Coverage() domain.Coverage {
	var c domain.Coverage
	if m.model == nil {
		return c
	}
	for _, e := range m.model.Edges() {
		c.EdgesTotal++
		if m.edgeVisits[e.Index] > 0 {
			c.EdgesCovered++
		}
	}
	for _, v := range m.model.States() {
		c.StatesTotal++
		if m.vertexVisits[v.Index] > 0 {
			c.StatesCovered++
		}
	}
	for _, r := range m.model.Requirements() {
		c.RequirementsTotal++
		if m.requirementHits[r] > 0 {
			c.RequirementsCovered++
		}
	}
	return c
}

// Statistics implements Machine.
func (m *FiniteStateMachine) Statistics() Statistics {
	s := Statistics{Coverage: m.Coverage(), Length: len(m.history)}
	if m.model == nil {
		return s
	}
	for _, e := range m.model.Edges() {
		if m.edgeVisits[e.Index] == 0 {
			s.UnvisitedEdges = append(s.UnvisitedEdges, e)
		}
	}
	for _, v := range m.model.States() {
		if m.vertexVisits[v.Index] == 0 {
			s.UnvisitedStates = append(s.UnvisitedStates, v)
		}
	}
	for _, r := range m.model.Requirements() {
		if m.requirementHits[r] == 0 {
			s.UncoveredRequirements = append(s.UncoveredRequirements, r)
		}
	}
	return s
}

// Percent formats covered/total as a percentage, or "n/a" when total is zero.
func Percent(covered, total int) string {
	if total == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d%%", covered*100/total)
}

// Compact renders ratios only.
func (s Statistics) Compact() string {
	return fmt.Sprintf("Edges: %s, States: %s, Requirements: %s",
		Percent(s.EdgesCovered, s.EdgesTotal),
		Percent(s.StatesCovered, s.StatesTotal),
		Percent(s.RequirementsCovered, s.RequirementsTotal))
}

// String renders ratios and counts.
func (s Statistics) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Coverage Edges: %d/%d => %s\n", s.EdgesCovered, s.EdgesTotal, Percent(s.EdgesCovered, s.EdgesTotal))
	fmt.Fprintf(&sb, "Coverage States: %d/%d => %s\n", s.StatesCovered, s.StatesTotal, Percent(s.StatesCovered, s.StatesTotal))
	fmt.Fprintf(&sb, "Coverage Requirements: %d/%d => %s\n", s.RequirementsCovered, s.RequirementsTotal,
		Percent(s.RequirementsCovered, s.RequirementsTotal))
	fmt.Fprintf(&sb, "Test sequence length: %d\n", s.Length)
	return sb.String()
}

// Verbose renders ratios, counts and every element not covered yet.
func (s Statistics) Verbose() string {
	var sb strings.Builder
	sb.WriteString(s.String())
	for _, e := range s.UnvisitedEdges {
		sb.WriteString("Unvisited Edge: " + domain.CompleteEdgeName(e) + "\n")
	}
	for _, v := range s.UnvisitedStates {
		sb.WriteString("Unvisited Vertex: " + domain.CompleteVertexName(v) + "\n")
	}
	for _, r := range s.UncoveredRequirements {
		sb.WriteString("Uncovered Requirement: " + r + "\n")
	}
	return sb.String()
}

// StatisticsCompact implements Machine.
func (m *FiniteStateMachine) StatisticsCompact() string {
	return m.Statistics().Compact()
}

// StatisticsString implements Machine.
func (m *FiniteStateMachine) StatisticsString() string {
	return m.Statistics().String()
}

// StatisticsVerbose implements Machine.
func (m *FiniteStateMachine) StatisticsVerbose() string {
	return m.Statistics().Verbose()
}
