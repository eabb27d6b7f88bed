package conditions

import (
	"fmt"

	"github.com/aretw0/mbt/pkg/domain"
)

// coverage compares one coverage ratio of the machine against a limit in [0, 1].
// A model without elements of the measured kind counts as fully covered.
type coverage struct {
	bound
	limit float64
	kind  string
	pick  func(domain.Coverage) (covered, total int)
}

func (c *coverage) ratio() float64 {
	covered, total := c.pick(c.m.Coverage())
	if total == 0 {
		return 1
	}
	return float64(covered) / float64(total)
}

func (c *coverage) IsFulfilled() bool {
	if !c.ready() {
		return false
	}
	return c.ratio() >= c.limit
}

func (c *coverage) Fulfilment() float64 {
	if !c.ready() {
		return 0
	}
	if c.limit <= 0 {
		return 1
	}
	return clamp(c.ratio() / c.limit)
}

func (c *coverage) String() string {
	return fmt.Sprintf("%s=%g%%", c.kind, c.limit*100)
}

// EdgeCoverage is fulfilled when the share of walked edges reaches the limit.
type EdgeCoverage struct {
	coverage
}

// NewEdgeCoverage creates an EdgeCoverage with limit given as a fraction (1.0 is every edge).
func NewEdgeCoverage(limit float64) *EdgeCoverage {
	return &EdgeCoverage{coverage{limit: limit, kind: "EdgeCoverage", pick: func(c domain.Coverage) (int, int) {
		return c.EdgesCovered, c.EdgesTotal
	}}}
}

// StateCoverage is fulfilled when the share of visited states reaches the limit.
// The Start vertex is not a state.
type StateCoverage struct {
	coverage
}

// NewStateCoverage creates a StateCoverage with limit given as a fraction.
func NewStateCoverage(limit float64) *StateCoverage {
	return &StateCoverage{coverage{limit: limit, kind: "StateCoverage", pick: func(c domain.Coverage) (int, int) {
		return c.StatesCovered, c.StatesTotal
	}}}
}

// RequirementCoverage is fulfilled when the share of covered requirement tags reaches the limit.
type RequirementCoverage struct {
	coverage
}

// NewRequirementCoverage creates a RequirementCoverage with limit given as a fraction.
func NewRequirementCoverage(limit float64) *RequirementCoverage {
	return &RequirementCoverage{coverage{limit: limit, kind: "RequirementCoverage", pick: func(c domain.Coverage) (int, int) {
		return c.RequirementsCovered, c.RequirementsTotal
	}}}
}
