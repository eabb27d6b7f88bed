package observability

import (
	"log/slog"

	"github.com/aretw0/mbt/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that log every event at Info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEdgeWalked: func(ev *domain.TraversalEvent) {
			logger.Info("edge_walked",
				"edge", domain.CompleteEdgeName(ev.Edge),
				"depth", ev.Depth,
				"edges_covered", ev.Coverage.EdgesCovered,
			)
		},
		OnBacktrack: func(ev *domain.TraversalEvent) {
			logger.Info("backtrack",
				"edge", domain.CompleteEdgeName(ev.Edge),
				"depth", ev.Depth,
			)
		},
		OnDeadEnd: func(ev *domain.DeadEndEvent) {
			logger.Info("dead_end", "vertex", domain.CompleteVertexName(ev.Vertex))
		},
	}
}
