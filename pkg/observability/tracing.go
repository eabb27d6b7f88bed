package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/mbt/pkg/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of the spans produced by TracingHooks.
const TracerName = "github.com/aretw0/mbt"

// TracingHooks returns lifecycle hooks that record each event as a short span.
//
// Span names are the event types (edge_walked, backtrack, dead_end). A dead end
// marks its span with an error status.
func TracingHooks(tracer trace.Tracer) domain.LifecycleHooks {
	traversal := func(ev *domain.TraversalEvent) {
		_, span := tracer.Start(context.Background(), string(ev.Type),
			trace.WithTimestamp(ev.Timestamp),
			trace.WithAttributes(
				attribute.String("mbt.edge", domain.CompleteEdgeName(ev.Edge)),
				attribute.String("mbt.vertex", domain.CompleteVertexName(ev.Vertex)),
				attribute.Int("mbt.depth", ev.Depth),
				attribute.Int("mbt.edges_covered", ev.Coverage.EdgesCovered),
				attribute.Int("mbt.edges_total", ev.Coverage.EdgesTotal),
				attribute.Int("mbt.states_covered", ev.Coverage.StatesCovered),
				attribute.Int("mbt.states_total", ev.Coverage.StatesTotal),
			),
		)
		span.End()
	}

	return domain.LifecycleHooks{
		OnEdgeWalked: traversal,
		OnBacktrack:  traversal,
		OnDeadEnd: func(ev *domain.DeadEndEvent) {
			vertex := domain.CompleteVertexName(ev.Vertex)
			_, span := tracer.Start(context.Background(), string(ev.Type),
				trace.WithTimestamp(ev.Timestamp),
				trace.WithAttributes(attribute.String("mbt.vertex", vertex)),
			)
			span.SetStatus(codes.Error, "dead end at "+vertex)
			span.End()
		},
	}
}

// LogExporter writes finished spans to a slog.Logger at Debug level.
type LogExporter struct {
	logger *slog.Logger
}

// NewLogExporter returns a span exporter backed by logger.
func NewLogExporter(logger *slog.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		args := []any{
			"trace_id", s.SpanContext().TraceID().String(),
			"span_id", s.SpanContext().SpanID().String(),
			"duration", s.EndTime().Sub(s.StartTime()),
		}
		for _, kv := range s.Attributes() {
			args = append(args, string(kv.Key), kv.Value.Emit())
		}
		if s.Status().Code == codes.Error {
			args = append(args, "error", s.Status().Description)
		}
		e.logger.DebugContext(ctx, s.Name(), args...)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *LogExporter) Shutdown(context.Context) error { return nil }

// NewTracerProvider returns a provider exporting spans synchronously to logger.
// Callers must Shutdown the provider when generation is done.
func NewTracerProvider(logger *slog.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(NewLogExporter(logger)))
}
