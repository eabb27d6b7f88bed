package observability

import (
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mbt"

// Metrics records generation progress.
//
//	mbt_steps_total         edges walked
//	mbt_backtracks_total    edges undone
//	mbt_dead_ends_total     dead ends hit by a generator
//	mbt_edge_visits_total   edges walked, by edge name
//	mbt_coverage_ratio      coverage between 0 and 1, by kind (edges, states, requirements)
//	mbt_sequence_depth      length of the current test sequence
type Metrics struct {
	steps      prometheus.Counter
	backtracks prometheus.Counter
	deadEnds   prometheus.Counter
	edgeVisits *prometheus.CounterVec
	coverage   *prometheus.GaugeVec
	depth      prometheus.Gauge
}

// NewMetrics creates and registers the metrics with reg.
// A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		steps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Total number of edges walked.",
		}),
		backtracks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backtracks_total",
			Help:      "Total number of edges undone by backtracking.",
		}),
		deadEnds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dead_ends_total",
			Help:      "Total number of dead ends reached by a generator.",
		}),
		edgeVisits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edge_visits_total",
			Help:      "Edges walked, by edge name.",
		}, []string{"edge"}),
		coverage: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coverage_ratio",
			Help:      "Coverage of the model between 0 and 1.",
		}, []string{"kind"}),
		depth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sequence_depth",
			Help:      "Number of edges in the current test sequence.",
		}),
	}
}

// Hooks returns lifecycle hooks feeding the metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEdgeWalked: func(ev *domain.TraversalEvent) {
			m.steps.Inc()
			if ev.Edge != nil {
				m.edgeVisits.WithLabelValues(ev.Edge.Label.Name).Inc()
			}
			m.observe(ev)
		},
		OnBacktrack: func(ev *domain.TraversalEvent) {
			m.backtracks.Inc()
			m.observe(ev)
		},
		OnDeadEnd: func(*domain.DeadEndEvent) {
			m.deadEnds.Inc()
		},
	}
}

func (m *Metrics) observe(ev *domain.TraversalEvent) {
	c := ev.Coverage
	m.coverage.WithLabelValues("edges").Set(ratio(c.EdgesCovered, c.EdgesTotal))
	m.coverage.WithLabelValues("states").Set(ratio(c.StatesCovered, c.StatesTotal))
	m.coverage.WithLabelValues("requirements").Set(ratio(c.RequirementsCovered, c.RequirementsTotal))
	m.depth.Set(float64(ev.Depth))
}

// ratio treats an empty category as fully covered.
func ratio(covered, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(covered) / float64(total)
}
