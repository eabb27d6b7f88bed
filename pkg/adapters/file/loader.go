package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/aretw0/mbt/internal/dto"
	"github.com/aretw0/mbt/internal/validator"
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Model is a decoded model file: the graph plus the initial data space it declares.
type Model struct {
	Name  string
	Graph *domain.Graph
	Data  map[string]string
}

// Loader implements ports.ModelLoader for YAML and JSON model files.
// Relative references are resolved against BaseDir.
type Loader struct {
	BaseDir string
}

// NewLoader creates a loader rooted at baseDir ("" means the working directory).
func NewLoader(baseDir string) *Loader {
	return &Loader{BaseDir: baseDir}
}

func (l *Loader) resolve(ref string) string {
	if filepath.IsAbs(ref) || l.BaseDir == "" {
		return ref
	}
	return filepath.Join(l.BaseDir, ref)
}

// LoadModel reads and validates the model at ref.
func (l *Loader) LoadModel(ctx context.Context, ref string) (*domain.Graph, error) {
	m, err := l.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	return m.Graph, nil
}

// Load reads the model at ref, including its name and initial data.
func (l *Loader) Load(ctx context.Context, ref string) (*Model, error) {
	path := l.resolve(ref)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	doc, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	m, err := Build(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Decode parses a model document. ext selects JSON (".json"); anything else is YAML.
// Both formats are decoded into a generic map first and then mapped onto the document
// with weak typing, so `count: 0` yields the data value "0".
func Decode(data []byte, ext string) (*dto.ModelDocument, error) {
	var raw map[string]any
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON model: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML model: %w", err)
		}
	}

	var doc dto.ModelDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		DecodeHook:       scalarToString,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid model document: %w", err)
	}
	return &doc, nil
}

// scalarToString keeps YAML booleans and floats readable as data values
// ("false" rather than the "0" a plain weak decode produces).
func scalarToString(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch v := data.(type) {
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return data, nil
}

// Build turns a document into a validated graph. Vertices are created in declaration
// order, then edges. The Start vertex is implicit.
func Build(doc *dto.ModelDocument) (*Model, error) {
	g := domain.NewGraph()
	byKey := map[string]*domain.Vertex{domain.StartLabel: g.AddVertex(domain.StartLabel)}

	var problems []string
	for _, vd := range doc.Vertices {
		key := vd.Key()
		if key == "" {
			problems = append(problems, "vertex without id or label")
			continue
		}
		if _, dup := byKey[key]; dup {
			problems = append(problems, fmt.Sprintf("duplicate vertex %q", key))
			continue
		}
		byKey[key] = g.AddVertex(vd.Label, vd.Requirements...)
	}

	for i, ed := range doc.Edges {
		from, to := ed.Endpoints()
		src, ok := byKey[from]
		if !ok {
			problems = append(problems, fmt.Sprintf("edge #%d %q: unknown source %q", i, ed.Label, from))
			continue
		}
		dst, ok := byKey[to]
		if !ok {
			problems = append(problems, fmt.Sprintf("edge #%d %q: unknown destination %q", i, ed.Label, to))
			continue
		}
		if _, err := g.AddEdge(src, dst, ed.Label, ed.Requirements...); err != nil {
			problems = append(problems, fmt.Sprintf("edge #%d: %v", i, err))
		}
	}

	if len(problems) > 0 {
		return nil, &domain.InvalidModelError{Problems: problems}
	}
	if err := validator.ValidateModel(g); err != nil {
		return nil, err
	}
	return &Model{Name: doc.Name, Graph: g, Data: doc.Data}, nil
}

// Document converts a graph back into its on-disk form.
func Document(name string, g *domain.Graph, data map[string]string) *dto.ModelDocument {
	doc := &dto.ModelDocument{Name: name, Data: data}
	keys := make(map[int]string)
	for _, v := range g.Vertices() {
		if v.IsStart() {
			keys[v.Index] = domain.StartLabel
			continue
		}
		key := v.Label
		vd := dto.VertexDocument{Label: v.Label, Requirements: v.Requirements}
		if key == "" || duplicated(g, v) {
			key = fmt.Sprintf("v%d", v.Index)
			vd.ID = key
		}
		keys[v.Index] = key
		doc.Vertices = append(doc.Vertices, vd)
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, dto.EdgeDocument{
			From:         keys[e.Source.Index],
			To:           keys[e.Destination.Index],
			Label:        e.Label.Raw,
			Requirements: e.Requirements,
		})
	}
	return doc
}

func duplicated(g *domain.Graph, v *domain.Vertex) bool {
	return len(g.FindVertices(v.Label)) > 1
}

// WriteYAML encodes a graph as a YAML model document.
func WriteYAML(w io.Writer, name string, g *domain.Graph, data map[string]string) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Document(name, g, data)); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return enc.Close()
}
