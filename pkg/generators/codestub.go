package generators

import (
	"sort"
	"strings"

	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/machine"
)

const (
	// LabelPlaceholder is replaced by the vertex label or edge name.
	LabelPlaceholder = "{LABEL}"
	// KindPlaceholder is replaced by "Edge" or "Vertex".
	KindPlaceholder = "{EDGE_VERTEX}"
)

// DefaultTemplate renders a Go method stub.
const DefaultTemplate = `// {LABEL} implements the {EDGE_VERTEX} '{LABEL}'.
func (s *SystemUnderTest) {LABEL}() error {
	return errors.New("{EDGE_VERTEX} {LABEL} is not implemented")
}
`

type stubLabel struct {
	name string
	kind string
}

// CodeStub renders one stub per distinct label of the model, in label order.
// It reads the model but never walks the machine, and ignores the stop condition.
type CodeStub struct {
	base
	template string
	labels   []stubLabel
	pos      int
	loaded   bool
}

// NewCodeStub creates a CodeStub generator using the template given with WithTemplate,
// or DefaultTemplate.
func NewCodeStub(opts ...Option) *CodeStub {
	cfg := newConfig(opts)
	tmpl := cfg.template
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	return &CodeStub{base: newBase(cfg), template: tmpl}
}

// SetTemplate replaces the template. Stubs already produced are not rendered again.
func (c *CodeStub) SetTemplate(template string) {
	c.template = template
}

// SetMachine binds the generator and restarts the pass.
func (c *CodeStub) SetMachine(m machine.Machine) {
	c.m = m
	c.labels = nil
	c.pos = 0
	c.loaded = false
}

func (c *CodeStub) load() {
	if c.loaded {
		return
	}
	kinds := make(map[string]string)
	g := c.m.Model()
	for _, v := range g.Vertices() {
		if v.IsStart() || v.Label == "" {
			continue
		}
		kinds[v.Label] = domain.KindVertex
	}
	for _, e := range g.Edges() {
		if e.Label.Name == "" {
			continue
		}
		kinds[e.Label.Name] = domain.KindEdge
	}
	for name, kind := range kinds {
		c.labels = append(c.labels, stubLabel{name: name, kind: kind})
	}
	sort.Slice(c.labels, func(i, j int) bool { return c.labels[i].name < c.labels[j].name })
	c.loaded = true
}

func (c *CodeStub) HasNext() (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	c.load()
	return c.pos < len(c.labels), nil
}

// Next returns the stub in Navigate and leaves Verify empty.
func (c *CodeStub) Next() (domain.Step, error) {
	if err := c.check(); err != nil {
		return domain.Step{}, err
	}
	c.load()
	if c.pos >= len(c.labels) {
		return domain.Step{}, &domain.InvalidTransitionError{Vertex: c.m.CurrentVertex(), Reason: "every stub has been generated"}
	}
	l := c.labels[c.pos]
	c.pos++
	return domain.Step{Navigate: Render(c.template, l.name, l.kind)}, nil
}

// Render fills the placeholders of template.
func Render(template, label, kind string) string {
	return strings.NewReplacer(LabelPlaceholder, label, KindPlaceholder, kind).Replace(template)
}

func (c *CodeStub) String() string { return "CodeStub" }
