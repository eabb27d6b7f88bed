package generators

import "github.com/aretw0/mbt/pkg/domain"

// Random picks uniformly among the admissible edges.
type Random struct {
	base
}

// NewRandom creates a Random generator.
func NewRandom(opts ...Option) *Random {
	return &Random{base: newBase(newConfig(opts))}
}

func (r *Random) HasNext() (bool, error) {
	return r.hasNext()
}

func (r *Random) Next() (domain.Step, error) {
	return r.next(r.random)
}

func (r *Random) String() string { return "Random" }
