package conditions

import (
	"strings"

	"github.com/aretw0/mbt/pkg/machine"
)

// Combinational is the logical OR of an ordered list of conditions.
// An empty Combinational is never fulfilled.
type Combinational struct {
	m          machine.Machine
	conditions []StopCondition
}

// NewCombinational creates a Combinational holding conditions.
func NewCombinational(conditions ...StopCondition) *Combinational {
	c := &Combinational{}
	for _, sub := range conditions {
		c.Add(sub)
	}
	return c
}

// Add appends a condition and binds it to the current machine, if any.
func (c *Combinational) Add(sub StopCondition) {
	if c.m != nil {
		sub.SetMachine(c.m)
	}
	c.conditions = append(c.conditions, sub)
}

// Conditions returns the members in insertion order.
func (c *Combinational) Conditions() []StopCondition {
	return append([]StopCondition(nil), c.conditions...)
}

// SetMachine binds every member.
func (c *Combinational) SetMachine(m machine.Machine) {
	c.m = m
	for _, sub := range c.conditions {
		sub.SetMachine(m)
	}
}

func (c *Combinational) IsFulfilled() bool {
	for _, sub := range c.conditions {
		if sub.IsFulfilled() {
			return true
		}
	}
	return false
}

// Fulfilment is the progress of the member closest to completion.
func (c *Combinational) Fulfilment() float64 {
	best := 0.0
	for _, sub := range c.conditions {
		best = max(best, sub.Fulfilment())
	}
	return best
}

func (c *Combinational) String() string {
	parts := make([]string, len(c.conditions))
	for i, sub := range c.conditions {
		parts[i] = sub.String()
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// Combine implements the aggregation policy for repeatedly added conditions:
// the first becomes the sole condition, the second promotes both into a
// Combinational, and later ones are appended to it.
func Combine(current, next StopCondition) StopCondition {
	switch c := current.(type) {
	case nil:
		return next
	case *Combinational:
		c.Add(next)
		return c
	default:
		return NewCombinational(current, next)
	}
}
