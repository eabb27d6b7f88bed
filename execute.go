package mbt

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/generators"
	"github.com/aretw0/mbt/pkg/ports"
)

// ParseCommand turns a step label into an executor call: everything from the first '/'
// or '[' is dropped and the rest is split on the first space into a name and one argument.
func ParseCommand(label string) (name string, args []string) {
	if i := strings.IndexByte(label, '/'); i >= 0 {
		label = label[:i]
	}
	if i := strings.IndexByte(label, '['); i >= 0 {
		label = label[:i]
	}
	label = strings.TrimSpace(label)
	if name, arg, found := strings.Cut(label, " "); found {
		return name, []string{strings.TrimSpace(arg)}
	}
	return label, nil
}

// Execute generates steps until the generator is exhausted and invokes every navigate
// and verify label on executor. Labels that reduce to an empty name are skipped.
// A walk that ends before its stop condition holds fails with domain.ErrDeadEnd.
// The context is checked between steps.
func (e *Engine) Execute(ctx context.Context, executor ports.Executor) error {
	if executor == nil {
		return fmt.Errorf("%w: no executor", domain.ErrNotConfigured)
	}
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := e.HasNextStep()
		if err != nil {
			return err
		}
		if !ok {
			if err := e.Stopped(); err != nil {
				return err
			}
			e.logger.Info("execution finished", "steps", n, "coverage", e.StatisticsCompact())
			return nil
		}
		step, err := e.NextStep()
		if err != nil {
			return err
		}

		n++
		e.logger.Info(fmt.Sprintf("Step: %d Navigate: %s", n, step.Navigate))
		if err := invoke(ctx, executor, step.Navigate); err != nil {
			return fmt.Errorf("step %d: navigate %q: %w", n, step.Navigate, err)
		}
		n++
		e.logger.Info(fmt.Sprintf("Step: %d Verify: %s", n, step.Verify))
		if err := invoke(ctx, executor, step.Verify); err != nil {
			return fmt.Errorf("step %d: verify %q: %w", n, step.Verify, err)
		}
	}
}

// Stopped tells why generation ended once HasNextStep reports false. It returns nil
// when the stop condition holds or the generator does not walk towards it (List,
// CodeStub). Otherwise the walk is stuck and the dead end is returned, reported
// through the OnDeadEnd hook like any other.
func (e *Engine) Stopped() error {
	if err := e.requireGenerator(); err != nil {
		return err
	}
	if e.condition == nil || e.condition.IsFulfilled() {
		return nil
	}
	switch e.generator.(type) {
	case *generators.List, *generators.CodeStub:
		return nil
	}
	_, err := e.NextStep()
	return err
}

func invoke(ctx context.Context, executor ports.Executor, label string) error {
	name, args := ParseCommand(label)
	if name == "" {
		return nil
	}
	return executor.Invoke(ctx, name, args...)
}

// Record generates steps until the generator is exhausted and returns them as a
// sequence, for later replay with Replay.
func (e *Engine) Record(ctx context.Context, id string) (*domain.Sequence, error) {
	if err := e.requireGenerator(); err != nil {
		return nil, err
	}
	seq := domain.NewSequence(id)
	seq.Model = e.Name
	seq.Generator = e.generator.String()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := e.HasNextStep()
		if err != nil {
			return nil, err
		}
		if !ok {
			if err := e.Stopped(); err != nil {
				return nil, err
			}
			break
		}
		step, err := e.NextStep()
		if err != nil {
			return nil, err
		}
		seq.Append(step)
	}
	seq.Statistics = e.StatisticsString()
	e.logger.Info("sequence recorded", "id", id, "steps", len(seq.Steps))
	return seq, nil
}

// Replay restarts the traversal and installs a List generator that walks seq,
// checking every verify label.
func (e *Engine) Replay(seq *domain.Sequence) error {
	if e.graph == nil {
		return fmt.Errorf("replay %q: %w: no model", seq.ID, domain.ErrNotConfigured)
	}
	if err := e.SetModel(e.graph); err != nil {
		return err
	}
	e.SetPathGenerator(generators.NewListFromSequence(seq,
		generators.WithLogger(e.logger),
		generators.WithLifecycleHooks(e.hooks),
	))
	return nil
}
