package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/mbt/pkg/domain"
)

// Store implements ports.SequenceStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Sequence
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Sequence),
	}
}

func clone(seq *domain.Sequence) *domain.Sequence {
	copied := *seq
	copied.Steps = make([]domain.Step, len(seq.Steps))
	for i, s := range seq.Steps {
		copied.Steps[i] = domain.Step{Navigate: s.Navigate, Verify: s.Verify}
	}
	return &copied
}

// Save stores a copy of the sequence.
func (s *Store) Save(ctx context.Context, seq *domain.Sequence) error {
	copied := clone(seq)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[seq.ID] = copied
	return nil
}

// Load returns a copy so callers can't mutate the stored sequence.
func (s *Store) Load(ctx context.Context, id string) (*domain.Sequence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq, ok := s.data[id]
	if !ok {
		return nil, domain.ErrSequenceNotFound
	}
	return clone(seq), nil
}

// Delete removes the sequence.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
