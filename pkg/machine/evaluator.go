package machine

import (
	"fmt"
	"sync"
)

// Evaluator interprets the guard and action bodies of edge labels.
type Evaluator interface {
	// Guard evaluates expr against data without side effects.
	Guard(expr string, data DataSpace) (bool, error)
	// Apply executes the assignments of action and returns the resulting data space.
	// data itself must not be modified.
	Apply(action string, data DataSpace) (DataSpace, error)
}

// ExpressionEvaluator is the default Evaluator. Each distinct expression is compiled once.
type ExpressionEvaluator struct {
	mu      sync.Mutex
	guards  map[string]*compiledGuard
	actions map[string]compiledAction
}

// NewExpressionEvaluator creates an evaluator with an empty compile cache.
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{
		guards:  make(map[string]*compiledGuard),
		actions: make(map[string]compiledAction),
	}
}

// Guard implements Evaluator.
func (e *ExpressionEvaluator) Guard(expr string, data DataSpace) (bool, error) {
	g, err := e.guard(expr)
	if err != nil {
		return false, err
	}
	return g.evaluate(data)
}

// Apply implements Evaluator.
func (e *ExpressionEvaluator) Apply(action string, data DataSpace) (DataSpace, error) {
	a, err := e.action(action)
	if err != nil {
		return nil, err
	}
	return a.apply(data)
}

func (e *ExpressionEvaluator) guard(expr string) (*compiledGuard, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if g, ok := e.guards[expr]; ok {
		return g, nil
	}
	g, err := compileGuard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid guard: %w", err)
	}
	e.guards[expr] = g
	return g, nil
}

func (e *ExpressionEvaluator) action(src string) (compiledAction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if a, ok := e.actions[src]; ok {
		return a, nil
	}
	a, err := compileAction(src)
	if err != nil {
		return nil, fmt.Errorf("invalid action: %w", err)
	}
	e.actions[src] = a
	return a, nil
}
