package dispatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/mbt/pkg/domain"
)

// Func implements one step. args holds the label parameter, if any.
type Func func(ctx context.Context, args ...string) error

// Table is an executor backed by explicitly registered functions.
type Table struct {
	funcs    map[string]Func
	fallback Func
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{funcs: make(map[string]Func)}
}

// Register binds name to fn, replacing a previous binding.
func (t *Table) Register(name string, fn Func) *Table {
	t.funcs[name] = fn
	return t
}

// Fallback sets the function used for unregistered names.
func (t *Table) Fallback(fn Func) *Table {
	t.fallback = fn
	return t
}

// Names returns the registered names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.funcs))
	for name := range t.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke calls the function registered for name.
func (t *Table) Invoke(ctx context.Context, name string, args ...string) error {
	fn, ok := t.funcs[name]
	if !ok {
		if t.fallback == nil {
			return fmt.Errorf("%w: %s", domain.ErrCommandNotFound, name)
		}
		fn = t.fallback
	}
	return fn(ctx, args...)
}
