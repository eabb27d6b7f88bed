package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/mbt"
	"github.com/aretw0/mbt/pkg/domain"
)

// RecordAndSave generates a complete sequence and stores it under id.
// When the storage has a locker, the recording holds the lock for id.
func RecordAndSave(ctx context.Context, eng *mbt.Engine, storage *Storage, id string, lockTTL time.Duration) (*domain.Sequence, error) {
	if storage.Locker != nil {
		if lockTTL <= 0 {
			lockTTL = 30 * time.Second
		}
		unlock, err := storage.Locker.Lock(ctx, id, lockTTL)
		if err != nil {
			return nil, fmt.Errorf("sequence %q is being recorded elsewhere: %w", id, err)
		}
		defer func() { _ = unlock(context.Background()) }()
	}

	seq, err := eng.Record(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := storage.Store.Save(ctx, seq); err != nil {
		return nil, fmt.Errorf("failed to save sequence %q: %w", id, err)
	}
	return seq, nil
}

// NewSequenceID derives an ID from the model name and the current time.
func NewSequenceID(model string, now time.Time) string {
	if model == "" {
		model = "sequence"
	}
	return fmt.Sprintf("%s-%s", model, now.UTC().Format("20060102T150405"))
}
