package conditions

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/mbt/pkg/domain"
)

// Kind names a stop condition variant in configuration files, flags and the factory.
type Kind string

const (
	KindEdgeCoverage        Kind = "edge_coverage"
	KindStateCoverage       Kind = "state_coverage"
	KindRequirementCoverage Kind = "requirement_coverage"
	KindReachedEdge         Kind = "reached_edge"
	KindReachedState        Kind = "reached_state"
	KindReachedRequirement  Kind = "reached_requirement"
	KindTestLength          Kind = "test_length"
	KindTestDuration        Kind = "test_duration"
	KindNever               Kind = "never"
)

// Kinds lists every supported kind.
func Kinds() []Kind {
	return []Kind{
		KindEdgeCoverage, KindStateCoverage, KindRequirementCoverage,
		KindReachedEdge, KindReachedState, KindReachedRequirement,
		KindTestLength, KindTestDuration, KindNever,
	}
}

// New builds a condition from its textual form.
//
// Coverage kinds take a percentage ("100", "87.5"). test_length takes a step count.
// test_duration takes a Go duration ("90s") or a bare number of seconds.
// The reached kinds take the label or tag to reach. never ignores value.
func New(kind Kind, value string, clock Clock) (StopCondition, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case KindEdgeCoverage, KindStateCoverage, KindRequirementCoverage:
		pct, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		if err != nil || pct < 0 || pct > 100 {
			return nil, fmt.Errorf("%s: invalid percentage %q", kind, value)
		}
		switch kind {
		case KindEdgeCoverage:
			return NewEdgeCoverage(pct / 100), nil
		case KindStateCoverage:
			return NewStateCoverage(pct / 100), nil
		default:
			return NewRequirementCoverage(pct / 100), nil
		}
	case KindReachedEdge, KindReachedState, KindReachedRequirement:
		if value == "" {
			return nil, fmt.Errorf("%s: a target is required", kind)
		}
		switch kind {
		case KindReachedEdge:
			return NewReachedEdge(value), nil
		case KindReachedState:
			return NewReachedState(value), nil
		default:
			return NewReachedRequirement(value), nil
		}
	case KindTestLength:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s: invalid length %q", kind, value)
		}
		return NewTestCaseLength(n), nil
	case KindTestDuration:
		d, err := parseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return NewTimeDuration(d, clock), nil
	case KindNever:
		return NewNever(), nil
	}
	return nil, fmt.Errorf("stop condition %q: %w", kind, domain.ErrUnsupportedKind)
}

func parseDuration(value string) (time.Duration, error) {
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative duration %q", value)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return d, nil
}
