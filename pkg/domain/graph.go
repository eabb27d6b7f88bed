package domain

import (
	"fmt"
	"slices"
	"sort"
)

// Vertex is a state of the system under test.
type Vertex struct {
	Index        int      `json:"index" yaml:"index"`
	Label        string   `json:"label" yaml:"label"`
	Requirements []string `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}

// IsStart reports whether v is the Start pseudo-vertex.
func (v *Vertex) IsStart() bool {
	return v != nil && v.Label == StartLabel
}

// Edge is a directed transition between two vertices of the same graph.
type Edge struct {
	Index        int       `json:"index" yaml:"index"`
	Source       *Vertex   `json:"-" yaml:"-"`
	Destination  *Vertex   `json:"-" yaml:"-"`
	Label        EdgeLabel `json:"label" yaml:"label"`
	Requirements []string  `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}

// Matches reports whether name identifies this edge: its bare name, its navigate
// form (name plus parameter) or the raw label.
func (e *Edge) Matches(name string) bool {
	return name != "" && (e.Label.Name == name || e.Label.Navigate() == name || e.Label.Raw == name)
}

// Graph is the model: a directed multigraph with stable indices.
// Vertex and edge indices share one counter, so an index identifies exactly one element.
// A Graph is built once and must not be changed while a machine uses it.
type Graph struct {
	vertices  []*Vertex
	edges     []*Edge
	out       map[int][]*Edge
	in        map[int][]*Edge
	byIndex   map[int]*Vertex
	start     *Vertex
	nextIndex int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		out:     make(map[int][]*Edge),
		in:      make(map[int][]*Edge),
		byIndex: make(map[int]*Vertex),
	}
}

// AddVertex creates a vertex. Adding a second vertex labelled "Start" returns the
// existing Start vertex.
func (g *Graph) AddVertex(label string, requirements ...string) *Vertex {
	if label == StartLabel && g.start != nil {
		return g.start
	}
	v := &Vertex{
		Index:        g.nextIndex,
		Label:        label,
		Requirements: normalizeTags(requirements),
	}
	g.nextIndex++
	g.vertices = append(g.vertices, v)
	g.byIndex[v.Index] = v
	if v.IsStart() {
		g.start = v
	}
	return v
}

// AddEdge creates an edge from src to dst with a raw label in the edge grammar.
func (g *Graph) AddEdge(src, dst *Vertex, label string, requirements ...string) (*Edge, error) {
	if !g.owns(src) || !g.owns(dst) {
		return nil, fmt.Errorf("edge %q: %w: endpoint does not belong to this graph", label, ErrInvalidModel)
	}
	if dst.IsStart() {
		return nil, fmt.Errorf("edge %q: %w: Start cannot be a destination", label, ErrInvalidModel)
	}
	parsed, err := ParseEdgeLabel(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if src.IsStart() && parsed.Guard != "" {
		return nil, fmt.Errorf("edge %q: %w: edges leaving Start cannot carry a guard", label, ErrInvalidModel)
	}

	e := &Edge{
		Index:        g.nextIndex,
		Source:       src,
		Destination:  dst,
		Label:        parsed,
		Requirements: normalizeTags(requirements),
	}
	g.nextIndex++
	g.edges = append(g.edges, e)
	g.out[src.Index] = append(g.out[src.Index], e)
	g.in[dst.Index] = append(g.in[dst.Index], e)
	return e, nil
}

func (g *Graph) owns(v *Vertex) bool {
	return v != nil && g.byIndex[v.Index] == v
}

// Start returns the Start pseudo-vertex, or nil if the model has none.
func (g *Graph) Start() *Vertex {
	return g.start
}

// Vertices returns all vertices in index order, Start included.
func (g *Graph) Vertices() []*Vertex {
	return slices.Clone(g.vertices)
}

// States returns all vertices except Start.
func (g *Graph) States() []*Vertex {
	states := make([]*Vertex, 0, len(g.vertices))
	for _, v := range g.vertices {
		if !v.IsStart() {
			states = append(states, v)
		}
	}
	return states
}

// Edges returns all edges in index order.
func (g *Graph) Edges() []*Edge {
	return slices.Clone(g.edges)
}

// OutEdges returns the edges leaving v in index order.
func (g *Graph) OutEdges(v *Vertex) []*Edge {
	if v == nil {
		return nil
	}
	return slices.Clone(g.out[v.Index])
}

// InEdges returns the edges entering v in index order.
func (g *Graph) InEdges(v *Vertex) []*Edge {
	if v == nil {
		return nil
	}
	return slices.Clone(g.in[v.Index])
}

// StartEdges returns the entry edges of the model.
func (g *Graph) StartEdges() []*Edge {
	return g.OutEdges(g.start)
}

// Vertex looks a vertex up by index.
func (g *Graph) Vertex(index int) (*Vertex, bool) {
	v, ok := g.byIndex[index]
	return v, ok
}

// FindVertices returns the vertices carrying label.
func (g *Graph) FindVertices(label string) []*Vertex {
	var found []*Vertex
	for _, v := range g.vertices {
		if v.Label == label {
			found = append(found, v)
		}
	}
	return found
}

// FindEdges returns the edges identified by name (see Edge.Matches).
func (g *Graph) FindEdges(name string) []*Edge {
	var found []*Edge
	for _, e := range g.edges {
		if e.Matches(name) {
			found = append(found, e)
		}
	}
	return found
}

// Requirements returns the distinct requirement tags of the model, sorted.
func (g *Graph) Requirements() []string {
	set := make(map[string]struct{})
	for _, v := range g.vertices {
		for _, r := range v.Requirements {
			set[r] = struct{}{}
		}
	}
	for _, e := range g.edges {
		for _, r := range e.Requirements {
			set[r] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for r := range set {
		tags = append(tags, r)
	}
	sort.Strings(tags)
	return tags
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
