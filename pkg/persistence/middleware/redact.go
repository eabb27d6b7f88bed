package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/ports"
)

type redactMiddleware struct {
	next     ports.SequenceStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that drops the parameter of every navigate
// label whose edge name matches one of the patterns ("e_Login alice s3cret" is stored
// as "e_Login"). Redacted labels still identify their edge by name, so the stored
// sequence can be replayed; the executor then receives no argument for that step.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.SequenceStore) ports.SequenceStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, seq *domain.Sequence) error {
	// Copy so the caller's sequence is left untouched.
	cloned := *seq
	cloned.Steps = make([]domain.Step, len(seq.Steps))
	for i, s := range seq.Steps {
		cloned.Steps[i] = domain.Step{Navigate: m.mask(s.Navigate), Verify: s.Verify}
	}
	return m.next.Save(ctx, &cloned)
}

func (m *redactMiddleware) mask(raw string) string {
	label, err := domain.ParseEdgeLabel(raw)
	if err != nil || label.Parameter == "" {
		return raw
	}
	for _, p := range m.patterns {
		if p.MatchString(label.Name) {
			label.Parameter = ""
			return label.String()
		}
	}
	return raw
}

func (m *redactMiddleware) Load(ctx context.Context, id string) (*domain.Sequence, error) {
	return m.next.Load(ctx, id)
}

func (m *redactMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
