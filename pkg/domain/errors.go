package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidModel is returned when a graph is structurally unusable (e.g. no Start edges).
	ErrInvalidModel = errors.New("invalid model")

	// ErrDeadEnd is returned when no admissible edge exists and backtracking cannot help.
	ErrDeadEnd = errors.New("dead end")

	// ErrUnknownVariable is returned when a guard, action or query names an undefined variable.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrInvalidTransition is returned when a requested edge cannot be taken from the current vertex.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrNotExtended is returned when data is requested from a machine without a data space.
	ErrNotExtended = errors.New("machine is not extended")

	// ErrNotConfigured is returned when a required collaborator (model, generator, condition) is missing.
	ErrNotConfigured = errors.New("not configured")

	// ErrUnsupportedKind is returned by factories for an unknown condition or generator kind.
	ErrUnsupportedKind = errors.New("unsupported kind")

	// ErrCommandNotFound is returned by executors that cannot resolve a step label.
	ErrCommandNotFound = errors.New("command not found")

	// ErrSequenceNotFound is returned when a stored sequence ID cannot be found.
	ErrSequenceNotFound = errors.New("sequence not found")
)

// DeadEndError reports the vertex at which generation got stuck.
type DeadEndError struct {
	Vertex *Vertex
}

func (e *DeadEndError) Error() string {
	return fmt.Sprintf("dead end at vertex %s: no admissible edge", CompleteVertexName(e.Vertex))
}

func (e *DeadEndError) Unwrap() error { return ErrDeadEnd }

// UnknownVariableError names the undefined data space variable.
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable '%s'", e.Name)
}

func (e *UnknownVariableError) Unwrap() error { return ErrUnknownVariable }

// InvalidTransitionError reports a label that does not name an admissible edge.
type InvalidTransitionError struct {
	Label  string
	Vertex *Vertex
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("'%s' is not an admissible transition from %s", e.Label, CompleteVertexName(e.Vertex))
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// InvalidModelError lists every structural problem found in a model.
type InvalidModelError struct {
	Problems []string
}

func (e *InvalidModelError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid model: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid model: %d problems: %v", len(e.Problems), e.Problems)
}

func (e *InvalidModelError) Unwrap() error { return ErrInvalidModel }
