package mbt

import (
	"log/slog"

	"github.com/aretw0/mbt/pkg/conditions"
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/machine"
)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine and everything it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks on the machine and the generator.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithExtended selects the extended machine, which evaluates guards and actions.
func WithExtended(enabled bool) Option {
	return func(e *Engine) {
		e.extended = enabled
	}
}

// WithBacktrack enables backtracking out of dead ends.
func WithBacktrack(enabled bool) Option {
	return func(e *Engine) {
		e.backtrack = enabled
	}
}

// WithInitialData pre-populates the data space of the extended machine.
func WithInitialData(data map[string]string) Option {
	return func(e *Engine) {
		e.initialData = data
	}
}

// WithEvaluator replaces the guard and action language of the extended machine.
func WithEvaluator(eval machine.Evaluator) Option {
	return func(e *Engine) {
		e.evaluator = eval
	}
}

// WithSeed makes random edge selection reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = &seed
	}
}

// WithClock sets the clock used by time based stop conditions.
func WithClock(clock conditions.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithName labels the engine, its logs and the sequences it records.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}
