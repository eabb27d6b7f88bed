package dsl

import (
	"fmt"

	"github.com/aretw0/mbt/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	order    []string
	vertices map[string]*VertexBuilder
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		vertices: make(map[string]*VertexBuilder),
	}
}

// Add creates a new vertex in the graph.
// If the vertex already exists, it returns the existing builder.
func (b *Builder) Add(label string) *VertexBuilder {
	if vb, ok := b.vertices[label]; ok {
		return vb
	}
	vb := &VertexBuilder{label: label, builder: b}
	b.vertices[label] = vb
	b.order = append(b.order, label)
	return vb
}

// Start returns the builder of the Start pseudo-vertex.
func (b *Builder) Start() *VertexBuilder {
	return b.Add(domain.StartLabel)
}

// Build compiles the description into a graph.
// Vertices are created in the order they were first mentioned, then edges in declaration order.
func (b *Builder) Build() (*domain.Graph, error) {
	g := domain.NewGraph()
	created := make(map[string]*domain.Vertex, len(b.order))
	for _, label := range b.order {
		created[label] = g.AddVertex(label, b.vertices[label].requirements...)
	}

	for _, label := range b.order {
		for _, ed := range b.vertices[label].edges {
			if _, err := g.AddEdge(created[label], created[ed.target], ed.label, ed.requirements...); err != nil {
				return nil, fmt.Errorf("failed to build edge %s -> %s: %w", label, ed.target, err)
			}
		}
	}
	return g, nil
}

// MustBuild is like Build but panics on error. Intended for tests and static models.
func (b *Builder) MustBuild() *domain.Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
