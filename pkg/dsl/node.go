package dsl

type edgeDecl struct {
	target       string
	label        string
	requirements []string
}

// VertexBuilder provides a fluent API for configuring a vertex and its outgoing edges.
type VertexBuilder struct {
	label        string
	requirements []string
	edges        []edgeDecl
	builder      *Builder
}

// Requires tags the vertex with requirement identifiers.
func (v *VertexBuilder) Requires(tags ...string) *VertexBuilder {
	v.requirements = append(v.requirements, tags...)
	return v
}

// Go adds an edge to the target vertex. The label uses the edge grammar
// (name, name param, name[guard], name/action).
func (v *VertexBuilder) Go(target, label string, requirements ...string) *VertexBuilder {
	v.builder.Add(target)
	v.edges = append(v.edges, edgeDecl{target: target, label: label, requirements: requirements})
	return v
}

// Loop adds a self-loop.
func (v *VertexBuilder) Loop(label string, requirements ...string) *VertexBuilder {
	return v.Go(v.label, label, requirements...)
}

// Add switches to another vertex, allowing chained declarations.
func (v *VertexBuilder) Add(label string) *VertexBuilder {
	return v.builder.Add(label)
}
