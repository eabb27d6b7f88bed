package generators

import (
	"fmt"

	"github.com/aretw0/mbt/pkg/domain"
)

// Kind names a generator variant in configuration files, flags and the factory.
type Kind string

const (
	KindRandom       Kind = "random"
	KindShortestPath Kind = "shortest"
	KindRequirements Kind = "requirements"
	KindList         Kind = "list"
	KindCodeStub     Kind = "stub"
)

// Kinds lists every supported kind.
func Kinds() []Kind {
	return []Kind{KindRandom, KindShortestPath, KindRequirements, KindList, KindCodeStub}
}

// New builds a generator by kind.
func New(kind Kind, opts ...Option) (PathGenerator, error) {
	switch kind {
	case KindRandom:
		return NewRandom(opts...), nil
	case KindShortestPath:
		return NewShortestPath(opts...), nil
	case KindRequirements:
		return NewRequirements(opts...), nil
	case KindList:
		return NewList(opts...), nil
	case KindCodeStub:
		return NewCodeStub(opts...), nil
	}
	return nil, fmt.Errorf("generator %q: %w", kind, domain.ErrUnsupportedKind)
}
