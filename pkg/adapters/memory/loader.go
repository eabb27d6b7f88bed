package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/mbt/pkg/domain"
)

// Loader implements ports.ModelLoader over graphs registered in memory.
// It is useful for tests and for embedding models built with the dsl package.
type Loader struct {
	models map[string]*domain.Graph
}

// NewLoader creates a loader serving the given models by name.
func NewLoader(models map[string]*domain.Graph) *Loader {
	l := &Loader{models: make(map[string]*domain.Graph, len(models))}
	for name, g := range models {
		l.models[name] = g
	}
	return l
}

// LoadModel returns the graph registered under ref.
func (l *Loader) LoadModel(ctx context.Context, ref string) (*domain.Graph, error) {
	g, ok := l.models[ref]
	if !ok {
		return nil, fmt.Errorf("model not found: %s", ref)
	}
	return g, nil
}

// Names returns the registered model names, sorted.
func (l *Loader) Names() []string {
	names := make([]string, 0, len(l.models))
	for name := range l.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
