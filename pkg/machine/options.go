package machine

import (
	"log/slog"

	"github.com/aretw0/mbt/pkg/domain"
)

type config struct {
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	backtrack   bool
	evaluator   Evaluator
	initialData DataSpace
}

// Option defines a functional option for configuring a machine.
type Option func(*config)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithBacktrack enables backtracking from the start.
func WithBacktrack(enabled bool) Option {
	return func(c *config) {
		c.backtrack = enabled
	}
}

// WithEvaluator replaces the guard/action evaluator of an extended machine.
func WithEvaluator(eval Evaluator) Option {
	return func(c *config) {
		c.evaluator = eval
	}
}

// WithInitialData pre-populates the data space of an extended machine.
// The data space is reset to this content by every SetModel.
func WithInitialData(data map[string]string) Option {
	return func(c *config) {
		c.initialData = DataSpace(data).Clone()
	}
}

func newConfig(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.evaluator == nil {
		cfg.evaluator = NewExpressionEvaluator()
	}
	return cfg
}
