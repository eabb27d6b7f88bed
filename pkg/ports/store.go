package ports

import (
	"context"

	"github.com/aretw0/mbt/pkg/domain"
)

// SequenceStore persists recorded sequences so they can be replayed offline.
type SequenceStore interface {
	// Save persists the sequence under its ID, replacing any previous version.
	Save(ctx context.Context, seq *domain.Sequence) error

	// Load retrieves a sequence.
	// Returns domain.ErrSequenceNotFound if the sequence does not exist.
	Load(ctx context.Context, id string) (*domain.Sequence, error)

	// Delete removes a sequence. Deleting a missing sequence is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of the stored sequences.
	List(ctx context.Context) ([]string, error)
}
