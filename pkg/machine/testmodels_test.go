package machine_test

import (
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/dsl"
)

// cycleModel is Start -> A -> B -> C -> A.
func cycleModel() *domain.Graph {
	b := dsl.New()
	b.Start().Go("A", "e_Init")
	b.Add("A").Requires("REQ-A").Go("B", "e_AB")
	b.Add("B").Go("C", "e_BC", "REQ-BC")
	b.Add("C").Go("A", "e_CA")
	return b.MustBuild()
}

func edge(g *domain.Graph, name string) *domain.Edge {
	return g.FindEdges(name)[0]
}
