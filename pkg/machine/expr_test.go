package machine_test

import (
	"testing"

	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpressionEvaluator_Guard(t *testing.T) {
	data := machine.DataSpace{
		"x":     "5",
		"empty": "",
		"flag":  "false",
		"name":  "bob",
		"n":     "10",
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"x", true},
		{"empty", false},
		{"flag", false},
		{"!empty", true},
		{"x == 5", true},
		{"x == '5'", true},
		{"n > 9", true},
		{"n > 9.5 && n < 11", true},
		{"n >= 10 && x <= 4", false},
		{"name == 'bob' || empty", true},
		{"name != \"bob\"", false},
		{"!(x && empty)", true},
		{"x + 5 == n", true},
		{"n - 11 == -1", true},
		{"true", true},
		{"false || !true", false},
		{"'abc' < 'abd'", true},
	}

	eval := machine.NewExpressionEvaluator()
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := eval.Guard(tt.expr, data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpressionEvaluator_GuardErrors(t *testing.T) {
	eval := machine.NewExpressionEvaluator()

	_, err := eval.Guard("x || missing", machine.DataSpace{"x": "1"})
	assert.ErrorIs(t, err, domain.ErrUnknownVariable, "every referenced name must be defined")

	for _, bad := range []string{"x ==", "(x", "x y", "x @ y", "'open"} {
		_, err := eval.Guard(bad, machine.DataSpace{"x": "1", "y": "2"})
		assert.Error(t, err, bad)
	}
}

func TestExpressionEvaluator_Apply(t *testing.T) {
	eval := machine.NewExpressionEvaluator()
	data := machine.DataSpace{"n": "1", "s": "a"}

	next, err := eval.Apply("n++; n += 3; s = s + 'b'; done = n == 5; m = n - 2; n--", data)
	require.NoError(t, err)
	assert.Equal(t, machine.DataSpace{"n": "4", "s": "ab", "done": "true", "m": "3"}, next)
	assert.Equal(t, machine.DataSpace{"n": "1", "s": "a"}, data, "input must not change")
}

func TestExpressionEvaluator_ApplyErrors(t *testing.T) {
	eval := machine.NewExpressionEvaluator()
	data := machine.DataSpace{"s": "text"}

	_, err := eval.Apply("missing++", data)
	assert.ErrorIs(t, err, domain.ErrUnknownVariable)

	_, err = eval.Apply("s++", data)
	assert.Error(t, err)

	_, err = eval.Apply("x = missing", data)
	assert.ErrorIs(t, err, domain.ErrUnknownVariable)

	for _, bad := range []string{"= 1", "x", "x == 1", "x = 1 y = 2"} {
		_, err := eval.Apply(bad, data)
		assert.Error(t, err, bad)
	}
}
