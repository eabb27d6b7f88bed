package mbt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/mbt"
	"github.com/aretw0/mbt/pkg/conditions"
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/dsl"
	"github.com/aretw0/mbt/pkg/generators"
	"github.com/aretw0/mbt/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cycleModel is Start -> A -> B -> C -> A.
func cycleModel() *domain.Graph {
	b := dsl.New()
	b.Start().Go("A", "e_Init")
	b.Add("A").Go("B", "e_AB")
	b.Add("B").Go("C", "e_BC")
	b.Add("C").Go("A", "e_CA")
	return b.MustBuild()
}

// counterModel increments n on every pass through A -> B.
func counterModel() *domain.Graph {
	b := dsl.New()
	b.Start().Go("A", "e_Init/n=0;")
	b.Add("A").Go("B", "e_Inc/n++;")
	b.Add("B").Go("A", "e_Back")
	return b.MustBuild()
}

func newEngine(t *testing.T, g *domain.Graph, opts ...mbt.Option) *mbt.Engine {
	t.Helper()
	eng, err := mbt.New(g, opts...)
	require.NoError(t, err)
	return eng
}

func drain(t *testing.T, eng *mbt.Engine, limit int) []string {
	t.Helper()
	var navigated []string
	for {
		ok, err := eng.HasNextStep()
		require.NoError(t, err)
		if !ok {
			return navigated
		}
		require.Less(t, len(navigated), limit, "generation did not stop")
		step, err := eng.NextStep()
		require.NoError(t, err)
		navigated = append(navigated, step.Navigate)
	}
}

func TestEngine_Walk(t *testing.T) {
	eng := newEngine(t, cycleModel())
	require.NoError(t, eng.AddCondition(conditions.KindEdgeCoverage, "100"))
	require.NoError(t, eng.SetGenerator(generators.KindShortestPath))

	assert.Empty(t, eng.CurrentState(), "no state before the first step")
	assert.Equal(t, []string{"e_Init", "e_AB", "e_BC", "e_CA"}, drain(t, eng, 10))
	assert.Equal(t, "A", eng.CurrentState())
	assert.Equal(t, 1.0, eng.Fulfilment())
	assert.Contains(t, eng.StatisticsString(), "Coverage Edges: 4/4 => 100%")
}

func TestEngine_NotConfigured(t *testing.T) {
	eng := newEngine(t, cycleModel())

	_, err := eng.HasNextStep()
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	_, err = eng.NextStep()
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	_, err = eng.Record(context.Background(), "seq")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.ErrorIs(t, eng.Execute(context.Background(), nil), domain.ErrNotConfigured)
	assert.Zero(t, eng.Fulfilment())
}

func TestEngine_AddCondition(t *testing.T) {
	t.Run("Combined with OR", func(t *testing.T) {
		eng := newEngine(t, cycleModel())
		require.NoError(t, eng.AddCondition(conditions.KindEdgeCoverage, "100"))
		require.NoError(t, eng.AddCondition(conditions.KindTestLength, "2"))
		require.NoError(t, eng.SetGenerator(generators.KindShortestPath))

		assert.Equal(t, "(EdgeCoverage=100% OR TestCaseLength=2)", eng.Condition().String())
		assert.Equal(t, []string{"e_Init", "e_AB"}, drain(t, eng, 10), "stops at the earliest condition")
	})

	t.Run("Invalid value", func(t *testing.T) {
		eng := newEngine(t, cycleModel())
		assert.Error(t, eng.AddCondition(conditions.KindEdgeCoverage, "lots"))
		assert.Error(t, eng.AddCondition(conditions.KindReachedState, ""))
		assert.Nil(t, eng.Condition())
	})

	t.Run("Added after the generator", func(t *testing.T) {
		eng := newEngine(t, cycleModel())
		require.NoError(t, eng.SetGenerator(generators.KindShortestPath))
		require.NoError(t, eng.AddCondition(conditions.KindReachedState, "B"))
		assert.Equal(t, []string{"e_Init", "e_AB"}, drain(t, eng, 10))
	})
}

func TestEngine_SetGenerator_Unsupported(t *testing.T) {
	eng := newEngine(t, cycleModel())
	assert.ErrorIs(t, eng.SetGenerator("astar"), domain.ErrUnsupportedKind)
	assert.Nil(t, eng.Generator())
}

func TestEngine_DataValue(t *testing.T) {
	t.Run("Plain machine", func(t *testing.T) {
		eng := newEngine(t, counterModel())
		_, err := eng.DataValue("n")
		assert.ErrorIs(t, err, domain.ErrNotExtended)
	})

	t.Run("Extended machine", func(t *testing.T) {
		eng := newEngine(t, counterModel(), mbt.WithExtended(true))
		require.NoError(t, eng.AddCondition(conditions.KindEdgeCoverage, "100"))
		require.NoError(t, eng.SetGenerator(generators.KindShortestPath))
		drain(t, eng, 10)

		value, err := eng.DataValue("n")
		require.NoError(t, err)
		assert.Equal(t, "1", value)

		_, err = eng.DataValue("missing")
		assert.ErrorIs(t, err, domain.ErrUnknownVariable)
	})

	t.Run("Enabled later", func(t *testing.T) {
		eng := newEngine(t, counterModel(), mbt.WithInitialData(map[string]string{"n": "5"}))
		require.NoError(t, eng.EnableExtended(true))
		assert.True(t, eng.Extended())

		value, err := eng.DataValue("n")
		require.NoError(t, err)
		assert.Equal(t, "5", value)
	})
}

func TestEngine_DeadEnd(t *testing.T) {
	b := dsl.New()
	b.Start().Go("A", "e_Init")
	b.Add("A").Go("B", "e_AB")
	eng := newEngine(t, b.MustBuild(), mbt.WithSeed(1))
	require.NoError(t, eng.AddCondition(conditions.KindNever, ""))
	require.NoError(t, eng.SetGenerator(generators.KindRandom))

	assert.Equal(t, []string{"e_Init", "e_AB"}, drain(t, eng, 10))

	_, err := eng.NextStep()
	var deadEnd *domain.DeadEndError
	require.ErrorAs(t, err, &deadEnd)
	assert.Equal(t, "B", deadEnd.Vertex.Label)
}

func TestEngine_Execute_DeadEnd(t *testing.T) {
	fork := func() *domain.Graph {
		b := dsl.New()
		b.Start().Go("A", "e_Init")
		b.Add("A").Go("B", "e_AB").Go("C", "e_AC")
		return b.MustBuild()
	}
	newStuck := func(t *testing.T, deadEnds *int) *mbt.Engine {
		eng := newEngine(t, fork(), mbt.WithLifecycleHooks(domain.LifecycleHooks{
			OnDeadEnd: func(*domain.DeadEndEvent) { *deadEnds++ },
		}))
		require.NoError(t, eng.AddCondition(conditions.KindEdgeCoverage, "100"))
		require.NoError(t, eng.SetGenerator(generators.KindShortestPath))
		return eng
	}

	t.Run("Execute", func(t *testing.T) {
		var deadEnds int
		eng := newStuck(t, &deadEnds)
		var calls []call
		err := eng.Execute(context.Background(), recorder(&calls, "", nil))

		var deadEnd *domain.DeadEndError
		require.ErrorAs(t, err, &deadEnd)
		assert.Equal(t, "B", deadEnd.Vertex.Label)
		assert.Equal(t, 1, deadEnds)
		assert.False(t, eng.Condition().IsFulfilled())
	})

	t.Run("Record", func(t *testing.T) {
		var deadEnds int
		eng := newStuck(t, &deadEnds)
		_, err := eng.Record(context.Background(), "run-1")
		assert.ErrorIs(t, err, domain.ErrDeadEnd)
		assert.Equal(t, 1, deadEnds)
	})

	t.Run("Fulfilled condition is a normal stop", func(t *testing.T) {
		eng := newEngine(t, fork())
		require.NoError(t, eng.AddCondition(conditions.KindTestLength, "2"))
		require.NoError(t, eng.SetGenerator(generators.KindShortestPath))
		var calls []call
		require.NoError(t, eng.Execute(context.Background(), recorder(&calls, "", nil)))
		assert.NoError(t, eng.Stopped())
	})
}

func TestEngine_Backtrack(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		eng := newEngine(t, cycleModel())
		require.NoError(t, eng.SetGenerator(generators.KindShortestPath))
		_, err := eng.NextStep()
		require.NoError(t, err)

		assert.False(t, eng.Backtrack())
		assert.Equal(t, "A", eng.CurrentState())
	})

	t.Run("Enabled", func(t *testing.T) {
		var backtracks int
		eng := newEngine(t, cycleModel(),
			mbt.WithBacktrack(true),
			mbt.WithLifecycleHooks(domain.LifecycleHooks{
				OnBacktrack: func(*domain.TraversalEvent) { backtracks++ },
			}),
		)
		require.NoError(t, eng.SetGenerator(generators.KindShortestPath))
		for range 2 {
			_, err := eng.NextStep()
			require.NoError(t, err)
		}
		require.Equal(t, "B", eng.CurrentState())

		assert.True(t, eng.Backtrack())
		assert.Equal(t, "A", eng.CurrentState())
		assert.True(t, eng.Backtrack())
		assert.Empty(t, eng.CurrentState())
		assert.False(t, eng.Backtrack(), "nothing left to undo")
		assert.Equal(t, 2, backtracks)
	})
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var walked []string
	eng := newEngine(t, cycleModel(), mbt.WithLifecycleHooks(domain.LifecycleHooks{
		OnEdgeWalked: func(ev *domain.TraversalEvent) { walked = append(walked, ev.Edge.Label.Name) },
	}))
	require.NoError(t, eng.AddCondition(conditions.KindEdgeCoverage, "100"))
	require.NoError(t, eng.SetGenerator(generators.KindShortestPath))
	drain(t, eng, 10)

	assert.Equal(t, []string{"e_Init", "e_AB", "e_BC", "e_CA"}, walked)
}

type call struct {
	name string
	args []string
}

func recorder(calls *[]call, failOn string, err error) ports.Executor {
	return ports.ExecutorFunc(func(ctx context.Context, name string, args ...string) error {
		*calls = append(*calls, call{name: name, args: args})
		if name == failOn {
			return err
		}
		return nil
	})
}

func TestEngine_Execute(t *testing.T) {
	b := dsl.New()
	b.Start().Go("v_Home", "e_Open")
	b.Add("v_Home").Go("v_Search", "e_Search shoes/n=1;")
	b.Add("v_Search").Go("v_Home", "")
	eng := newEngine(t, b.MustBuild())
	require.NoError(t, eng.AddCondition(conditions.KindEdgeCoverage, "100"))
	require.NoError(t, eng.SetGenerator(generators.KindShortestPath))

	var calls []call
	require.NoError(t, eng.Execute(context.Background(), recorder(&calls, "", nil)))

	assert.Equal(t, []call{
		{name: "e_Open"},
		{name: "v_Home"},
		{name: "e_Search", args: []string{"shoes"}},
		{name: "v_Search"},
		{name: "v_Home"},
	}, calls, "unlabeled edges are skipped")
}

func TestEngine_Execute_Failure(t *testing.T) {
	eng := newEngine(t, cycleModel())
	require.NoError(t, eng.AddCondition(conditions.KindEdgeCoverage, "100"))
	require.NoError(t, eng.SetGenerator(generators.KindShortestPath))

	boom := errors.New("boom")
	var calls []call
	err := eng.Execute(context.Background(), recorder(&calls, "B", boom))

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `verify "B"`)
	assert.Len(t, calls, 4)
}

func TestEngine_Execute_Cancelled(t *testing.T) {
	eng := newEngine(t, cycleModel())
	require.NoError(t, eng.SetGenerator(generators.KindShortestPath))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls []call
	assert.ErrorIs(t, eng.Execute(ctx, recorder(&calls, "", nil)), context.Canceled)
	assert.Empty(t, calls)
}

func TestEngine_RecordReplay(t *testing.T) {
	eng := newEngine(t, cycleModel(), mbt.WithName("cycle"))
	require.NoError(t, eng.AddCondition(conditions.KindEdgeCoverage, "100"))
	require.NoError(t, eng.SetGenerator(generators.KindShortestPath))

	seq, err := eng.Record(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", seq.ID)
	assert.Equal(t, "cycle", seq.Model)
	require.Len(t, seq.Steps, 4)
	assert.Equal(t, domain.Step{Navigate: "e_BC", Verify: "C"}, seq.Steps[2])
	assert.Contains(t, seq.Statistics, "100%")

	t.Run("Replays the same walk", func(t *testing.T) {
		require.NoError(t, eng.Replay(seq))
		assert.Empty(t, eng.CurrentState())
		assert.Equal(t, []string{"e_Init", "e_AB", "e_BC", "e_CA"}, drain(t, eng, 10))
	})

	t.Run("Rejects a changed model", func(t *testing.T) {
		changed := *seq
		changed.Steps = append([]domain.Step(nil), seq.Steps...)
		changed.Steps[1].Verify = "C"

		require.NoError(t, eng.Replay(&changed))
		err := eng.Execute(context.Background(), ports.ExecutorFunc(func(context.Context, string, ...string) error {
			return nil
		}))
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		label    string
		wantName string
		wantArgs []string
	}{
		{"e_Login", "e_Login", nil},
		{"e_Login/validLogin=true;", "e_Login", nil},
		{"e_Login alice", "e_Login", []string{"alice"}},
		{"e_Type hello world", "e_Type", []string{"hello world"}},
		{"e_Retry[attempts<3]/attempts++;", "e_Retry", nil},
		{"[ready]", "", nil},
		{"", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			name, args := mbt.ParseCommand(tt.label)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
