package domain

import "time"

// Step is one generated test step: perform Navigate, then assert Verify.
type Step struct {
	Navigate string `json:"navigate" yaml:"navigate"`
	Verify   string `json:"verify" yaml:"verify"`

	// Edge and Vertex are the walked edge and the vertex it led to.
	// They are nil for steps that do not come from a traversal (code stubs, replays from storage).
	Edge   *Edge   `json:"-" yaml:"-"`
	Vertex *Vertex `json:"-" yaml:"-"`
}

// Pair returns the step in the two-element form consumed by drivers.
func (s Step) Pair() [2]string {
	return [2]string{s.Navigate, s.Verify}
}

// Sequence is a recorded generation run, kept for offline replay.
type Sequence struct {
	ID         string    `json:"id" yaml:"id"`
	Model      string    `json:"model,omitempty" yaml:"model,omitempty"`
	Generator  string    `json:"generator,omitempty" yaml:"generator,omitempty"`
	Steps      []Step    `json:"steps" yaml:"steps"`
	Statistics string    `json:"statistics,omitempty" yaml:"statistics,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`

	// Sealed holds the encrypted steps and statistics when the sequence was stored
	// through an encrypting store. Steps is empty in that case.
	Sealed string `json:"sealed,omitempty" yaml:"sealed,omitempty"`
}

// NewSequence creates an empty sequence.
func NewSequence(id string) *Sequence {
	return &Sequence{
		ID:        id,
		Steps:     []Step{},
		CreatedAt: time.Now().UTC(),
	}
}

// Append records a step.
func (s *Sequence) Append(step Step) {
	s.Steps = append(s.Steps, Step{Navigate: step.Navigate, Verify: step.Verify})
}
