package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/observability"
)

// GenerationHooks returns the lifecycle hooks for a CLI run: event logging and,
// when cfg.Trace is set, tracing spans written to logger. The returned function
// flushes the tracer and must be called before exit.
func GenerationHooks(cfg LogConfig, logger *slog.Logger) (domain.LifecycleHooks, func(context.Context) error) {
	hooks := observability.LoggingHooks(logger)
	if !cfg.Trace {
		return hooks, func(context.Context) error { return nil }
	}
	tp := observability.NewTracerProvider(logger)
	hooks = hooks.Merge(observability.TracingHooks(tp.Tracer(observability.TracerName)))
	return hooks, tp.Shutdown
}
