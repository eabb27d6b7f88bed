package conditions

import "github.com/aretw0/mbt/pkg/machine"

// StopCondition is a predicate over the state of a machine.
type StopCondition interface {
	// SetMachine binds the condition. It is called again on every reconfiguration.
	SetMachine(m machine.Machine)
	// IsFulfilled reports whether generation should stop. Unbound conditions are never fulfilled.
	IsFulfilled() bool
	// Fulfilment reports progress towards the condition, between 0 and 1.
	Fulfilment() float64
	String() string
}

// bound holds the machine reference shared by every condition.
type bound struct {
	m machine.Machine
}

func (b *bound) SetMachine(m machine.Machine) {
	b.m = m
}

func (b *bound) ready() bool {
	return b.m != nil && b.m.Model() != nil
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Never is never fulfilled. Generation ends only when the generator runs out of steps.
type Never struct {
	bound
}

// NewNever creates a Never condition.
func NewNever() *Never { return &Never{} }

func (n *Never) IsFulfilled() bool   { return false }
func (n *Never) Fulfilment() float64 { return 0 }
func (n *Never) String() string      { return "Never" }
