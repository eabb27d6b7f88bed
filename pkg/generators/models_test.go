package generators_test

import (
	"testing"

	"github.com/aretw0/mbt/pkg/conditions"
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/dsl"
	"github.com/aretw0/mbt/pkg/generators"
	"github.com/aretw0/mbt/pkg/machine"
	"github.com/stretchr/testify/require"
)

// deadEndModel is Start -> A -> B, and B has no way out.
func deadEndModel() *domain.Graph {
	b := dsl.New()
	b.Start().Go("A", "e_Init")
	b.Add("A").Go("B", "e_AB")
	return b.MustBuild()
}

// diamondModel is Start -> A, A -> B, A -> C, B -> D, C -> D.
func diamondModel(withReturn bool) *domain.Graph {
	b := dsl.New()
	b.Start().Go("A", "e_Init")
	b.Add("A").Go("B", "e_AB").Go("C", "e_AC")
	b.Add("B").Go("D", "e_BD")
	b.Add("C").Go("D", "e_CD")
	if withReturn {
		b.Add("D").Go("A", "e_DA")
	}
	return b.MustBuild()
}

// cycleModel is Start -> A -> B -> C -> A.
func cycleModel() *domain.Graph {
	b := dsl.New()
	b.Start().Go("A", "e_Init")
	b.Add("A").Go("B", "e_AB")
	b.Add("B").Go("C", "e_BC")
	b.Add("C").Go("A", "e_CA")
	return b.MustBuild()
}

// bind wires machine, condition and generator the way the engine does.
func bind(t *testing.T, g *domain.Graph, m machine.Machine, gen generators.PathGenerator, cond conditions.StopCondition) {
	t.Helper()
	require.NoError(t, m.SetModel(g))
	gen.SetMachine(m)
	if cond != nil {
		cond.SetMachine(m)
		gen.SetStopCondition(cond)
	}
}

// drain runs the generator until HasNext reports false, failing after limit steps.
func drain(t *testing.T, gen generators.PathGenerator, limit int) []string {
	t.Helper()
	var navigated []string
	for {
		ok, err := gen.HasNext()
		require.NoError(t, err)
		if !ok {
			return navigated
		}
		require.Less(t, len(navigated), limit, "generator did not stop")
		step, err := gen.Next()
		require.NoError(t, err)
		navigated = append(navigated, step.Navigate)
	}
}
