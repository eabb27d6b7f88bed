package domain_test

import (
	"errors"
	"testing"

	"github.com/aretw0/mbt/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_Build(t *testing.T) {
	g := domain.NewGraph()
	start := g.AddVertex(domain.StartLabel)
	a := g.AddVertex("v_A", "REQ-1")
	b := g.AddVertex("v_B", "REQ-2", "REQ-1")

	e1, err := g.AddEdge(start, a, "e_Init")
	require.NoError(t, err)
	e2, err := g.AddEdge(a, b, "e_Next[x]/y=x", "REQ-3")
	require.NoError(t, err)
	_, err = g.AddEdge(b, b, "e_Loop")
	require.NoError(t, err)

	assert.Same(t, start, g.Start())
	assert.Same(t, start, g.AddVertex(domain.StartLabel), "Start must stay unique")
	assert.Len(t, g.Vertices(), 3)
	assert.Len(t, g.States(), 2)
	assert.Equal(t, []*domain.Edge{e1}, g.StartEdges())
	assert.Equal(t, []*domain.Edge{e2}, g.InEdges(b)[:1])
	assert.Equal(t, []string{"REQ-1", "REQ-2", "REQ-3"}, g.Requirements())
	assert.Equal(t, "x", e2.Label.Guard)

	// Indices are unique across vertices and edges.
	seen := map[int]bool{}
	for _, v := range g.Vertices() {
		assert.False(t, seen[v.Index])
		seen[v.Index] = true
	}
	for _, e := range g.Edges() {
		assert.False(t, seen[e.Index])
		seen[e.Index] = true
	}

	assert.Len(t, g.FindEdges("e_Next"), 1)
	assert.Len(t, g.FindVertices("v_B"), 1)
}

func TestGraph_AddEdgeRejectsInvalidEdges(t *testing.T) {
	g := domain.NewGraph()
	start := g.AddVertex(domain.StartLabel)
	a := g.AddVertex("v_A")
	foreign := domain.NewGraph().AddVertex("v_X")

	_, err := g.AddEdge(start, a, "e_Init[x]")
	assert.True(t, errors.Is(err, domain.ErrInvalidModel), "guarded start edge")

	_, err = g.AddEdge(a, foreign, "e_Out")
	assert.ErrorIs(t, err, domain.ErrInvalidModel)

	_, err = g.AddEdge(a, start, "e_Back")
	assert.ErrorIs(t, err, domain.ErrInvalidModel)
}

func TestErrors_Unwrap(t *testing.T) {
	assert.ErrorIs(t, &domain.DeadEndError{}, domain.ErrDeadEnd)
	assert.ErrorIs(t, &domain.UnknownVariableError{Name: "x"}, domain.ErrUnknownVariable)
	assert.ErrorIs(t, &domain.InvalidTransitionError{Label: "go"}, domain.ErrInvalidTransition)
	assert.ErrorIs(t, &domain.InvalidModelError{Problems: []string{"p"}}, domain.ErrInvalidModel)
	assert.Contains(t, (&domain.UnknownVariableError{Name: "x"}).Error(), "'x'")
}
