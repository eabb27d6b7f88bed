package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/mbt/pkg/domain"
)

// Store implements ports.SequenceStore using the local filesystem.
// Each sequence is a JSON file named after its ID.
type Store struct {
	BasePath string
}

// NewStore creates a Store rooted at basePath.
// If basePath is empty, it defaults to ".mbt/sequences".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".mbt", "sequences")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("sequence id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid sequence id %q", id)
	}
	return filepath.Join(s.BasePath, id+".json"), nil
}

// Save writes the sequence, replacing any previous file.
func (s *Store) Save(ctx context.Context, seq *domain.Sequence) error {
	p, err := s.path(seq.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure sequence directory: %w", err)
	}

	data, err := json.MarshalIndent(seq, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sequence: %w", err)
	}

	// Write then rename so a reader never sees a half-written file.
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sequence file: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write sequence file: %w", err)
	}
	return nil
}

// Load reads a sequence.
func (s *Store) Load(ctx context.Context, id string) (*domain.Sequence, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrSequenceNotFound
		}
		return nil, fmt.Errorf("failed to read sequence file: %w", err)
	}

	var seq domain.Sequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sequence: %w", err)
	}
	if seq.Steps == nil {
		seq.Steps = []domain.Step{}
	}
	return &seq, nil
}

// Delete removes the sequence file.
func (s *Store) Delete(ctx context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete sequence file: %w", err)
	}
	return nil
}

// List returns the stored IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sequences: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && filepath.Ext(name) == ".json" {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}
	sort.Strings(ids)
	return ids, nil
}
