package generators

import (
	"log/slog"
	"math/rand/v2"

	"github.com/aretw0/mbt/pkg/domain"
)

// Option configures a generator.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	rng      *rand.Rand
	labels   []string
	template string
}

// WithLogger sets the logger. Generators log dead ends and fallbacks at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers hooks. Generators emit OnDeadEnd.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithRand sets the random source used for edge selection.
func WithRand(r *rand.Rand) Option {
	return func(c *config) {
		c.rng = r
	}
}

// WithSeed makes edge selection reproducible.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed)))
}

// WithLabels sets the labels replayed by the List generator.
func WithLabels(labels ...string) Option {
	return func(c *config) {
		c.labels = append(c.labels, labels...)
	}
}

// WithTemplate sets the stub template used by the CodeStub generator.
func WithTemplate(template string) Option {
	return func(c *config) {
		c.template = template
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return cfg
}
