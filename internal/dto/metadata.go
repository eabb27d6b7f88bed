package dto

// ModelDocument is the on-disk form of a model (YAML or JSON).
// It uses "mapstructure" tags so both formats decode through the same generic map.
type ModelDocument struct {
	Name     string            `json:"name" yaml:"name" mapstructure:"name"`
	Vertices []VertexDocument  `json:"vertices" yaml:"vertices" mapstructure:"vertices"`
	Edges    []EdgeDocument    `json:"edges" yaml:"edges" mapstructure:"edges"`
	Data     map[string]string `json:"data,omitempty" yaml:"data,omitempty" mapstructure:"data"`
}

// VertexDocument declares a state. ID defaults to Label; edges refer to vertices by ID.
type VertexDocument struct {
	ID           string   `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Label        string   `json:"label" yaml:"label" mapstructure:"label"`
	Requirements []string `json:"requirements,omitempty" yaml:"requirements,omitempty" mapstructure:"requirements"`
}

// Key returns the identifier edges use to refer to the vertex.
func (v VertexDocument) Key() string {
	if v.ID != "" {
		return v.ID
	}
	return v.Label
}

// EdgeDocument declares a transition. Source/Target are accepted as aliases of From/To.
type EdgeDocument struct {
	From         string   `json:"from" yaml:"from" mapstructure:"from"`
	Source       string   `json:"source,omitempty" yaml:"source,omitempty" mapstructure:"source"`
	To           string   `json:"to" yaml:"to" mapstructure:"to"`
	Target       string   `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
	Label        string   `json:"label" yaml:"label" mapstructure:"label"`
	Requirements []string `json:"requirements,omitempty" yaml:"requirements,omitempty" mapstructure:"requirements"`
}

// Endpoints resolves the aliases.
func (e EdgeDocument) Endpoints() (from, to string) {
	from, to = e.From, e.To
	if from == "" {
		from = e.Source
	}
	if to == "" {
		to = e.Target
	}
	return from, to
}
