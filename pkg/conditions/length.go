package conditions

import (
	"fmt"
	"time"

	"github.com/aretw0/mbt/pkg/machine"
)

// TestCaseLength is fulfilled when the walked path holds at least n edges.
type TestCaseLength struct {
	bound
	n int
}

// NewTestCaseLength creates a TestCaseLength.
func NewTestCaseLength(n int) *TestCaseLength {
	return &TestCaseLength{n: n}
}

func (t *TestCaseLength) length() int {
	return t.m.HistoryLen()
}

func (t *TestCaseLength) IsFulfilled() bool {
	if !t.ready() {
		return false
	}
	return t.length() >= t.n
}

func (t *TestCaseLength) Fulfilment() float64 {
	if !t.ready() {
		return 0
	}
	if t.n <= 0 {
		return 1
	}
	return clamp(float64(t.length()) / float64(t.n))
}

func (t *TestCaseLength) String() string {
	return fmt.Sprintf("TestCaseLength=%d", t.n)
}

// Clock returns the current time.
type Clock func() time.Time

// TimeDuration is fulfilled once d has elapsed since the condition was bound.
type TimeDuration struct {
	bound
	d     time.Duration
	now   Clock
	start time.Time
}

// NewTimeDuration creates a TimeDuration measured with now, or the wall clock when now is nil.
func NewTimeDuration(d time.Duration, now Clock) *TimeDuration {
	if now == nil {
		now = time.Now
	}
	return &TimeDuration{d: d, now: now}
}

// SetMachine binds the condition and restarts the timer.
func (t *TimeDuration) SetMachine(m machine.Machine) {
	t.m = m
	t.start = t.now()
}

func (t *TimeDuration) elapsed() time.Duration {
	return t.now().Sub(t.start)
}

func (t *TimeDuration) IsFulfilled() bool {
	if t.start.IsZero() {
		return false
	}
	return t.elapsed() >= t.d
}

func (t *TimeDuration) Fulfilment() float64 {
	if t.start.IsZero() {
		return 0
	}
	if t.d <= 0 {
		return 1
	}
	return clamp(float64(t.elapsed()) / float64(t.d))
}

func (t *TimeDuration) String() string {
	return "TimeDuration=" + t.d.String()
}
