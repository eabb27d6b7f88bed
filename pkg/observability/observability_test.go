package observability_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/aretw0/mbt"
	"github.com/aretw0/mbt/pkg/dsl"
	"github.com/aretw0/mbt/pkg/generators"
	"github.com/aretw0/mbt/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain(t *testing.T, hooks ...mbt.Option) *mbt.Engine {
	t.Helper()
	b := dsl.New()
	b.Start().Go("A", "e_Init")
	b.Add("A").Go("B", "e_AB").Requires("REQ-A")

	eng, err := mbt.New(b.MustBuild(), hooks...)
	require.NoError(t, err)
	require.NoError(t, eng.SetGenerator(generators.KindShortestPath))
	return eng
}

// value returns the value of the metric name whose labels include want.
func value(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if !hasLabels(m, want) {
				continue
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, want)
	return 0
}

func hasLabels(m *dto.Metric, want map[string]string) bool {
	got := make(map[string]string)
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	eng := chain(t, mbt.WithLifecycleHooks(metrics.Hooks()), mbt.WithBacktrack(true))

	_, err := eng.NextStep()
	require.NoError(t, err)

	assert.Equal(t, 1.0, value(t, reg, "mbt_steps_total", nil))
	assert.Equal(t, 0.5, value(t, reg, "mbt_coverage_ratio", map[string]string{"kind": "edges"}))
	assert.Equal(t, 0.5, value(t, reg, "mbt_coverage_ratio", map[string]string{"kind": "states"}))
	assert.Equal(t, 1.0, value(t, reg, "mbt_coverage_ratio", map[string]string{"kind": "requirements"}))

	_, err = eng.NextStep()
	require.NoError(t, err)
	require.True(t, eng.Backtrack())

	assert.Equal(t, 2.0, value(t, reg, "mbt_steps_total", nil))
	assert.Equal(t, 1.0, value(t, reg, "mbt_backtracks_total", nil))
	assert.Equal(t, 1.0, value(t, reg, "mbt_sequence_depth", nil))
}

func TestMetrics_DeadEnd(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	eng := chain(t, mbt.WithLifecycleHooks(metrics.Hooks()))

	for range 2 {
		_, err := eng.NextStep()
		require.NoError(t, err)
	}
	_, err := eng.NextStep()
	require.Error(t, err)

	assert.Equal(t, 1.0, value(t, reg, "mbt_dead_ends_total", nil))
	assert.Equal(t, 1.0, value(t, reg, "mbt_edge_visits_total", map[string]string{"edge": "e_Init"}))
	assert.Equal(t, 1.0, value(t, reg, "mbt_edge_visits_total", map[string]string{"edge": "e_AB"}))
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	eng := chain(t, mbt.WithLifecycleHooks(observability.LoggingHooks(logger)))

	_, err := eng.NextStep()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "msg=edge_walked")
	assert.Contains(t, buf.String(), "depth=1")
}
