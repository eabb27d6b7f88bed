package ports

import (
	"context"

	"github.com/aretw0/mbt/pkg/domain"
)

// ModelLoader builds a graph from a model reference.
// Implementations must only return graphs that pass domain validation.
type ModelLoader interface {
	LoadModel(ctx context.Context, ref string) (*domain.Graph, error)
}
