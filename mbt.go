package mbt

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/mbt/pkg/conditions"
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/generators"
	"github.com/aretw0/mbt/pkg/machine"
)

// Engine is the high-level entry point of the library.
// It owns one machine, stop condition and generator and keeps the three bound to each
// other whenever any of them is replaced.
//
// An Engine is not safe for concurrent use. Run independent sessions on independent
// engines; they may share the same graph.
type Engine struct {
	graph     *domain.Graph
	machine   machine.Machine
	condition conditions.StopCondition
	generator generators.PathGenerator

	extended    bool
	backtrack   bool
	template    string
	initialData map[string]string
	evaluator   machine.Evaluator
	seed        *uint64
	clock       conditions.Clock

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	Name   string
}

// New initializes an engine for graph. A nil graph is allowed; install one later with SetModel.
func New(graph *domain.Graph, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.DiscardHandler)
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("model", eng.Name)
	}

	eng.machine = eng.newMachine()
	if graph == nil {
		eng.bind()
		return eng, nil
	}
	if err := eng.SetModel(graph); err != nil {
		return nil, err
	}
	return eng, nil
}

func (e *Engine) newMachine() machine.Machine {
	opts := []machine.Option{
		machine.WithLogger(e.logger),
		machine.WithLifecycleHooks(e.hooks),
		machine.WithBacktrack(e.backtrack),
	}
	if !e.extended {
		return machine.NewFiniteStateMachine(opts...)
	}
	opts = append(opts, machine.WithInitialData(e.initialData))
	if e.evaluator != nil {
		opts = append(opts, machine.WithEvaluator(e.evaluator))
	}
	return machine.NewExtendedFiniteStateMachine(opts...)
}

// bind propagates the current machine to the condition and the generator, and the
// condition to the generator. It runs whenever the machine or its model changes.
func (e *Engine) bind() {
	e.machine.SetBacktrack(e.backtrack)
	if e.condition != nil {
		e.condition.SetMachine(e.machine)
	}
	if e.generator != nil {
		e.generator.SetMachine(e.machine)
		e.generator.SetStopCondition(e.condition)
	}
}

// SetModel installs graph and resets the traversal.
func (e *Engine) SetModel(graph *domain.Graph) error {
	if err := e.machine.SetModel(graph); err != nil {
		return err
	}
	e.graph = graph
	e.logger.Debug("model installed", "states", len(graph.States()), "edges", len(graph.Edges()))
	e.bind()
	return nil
}

// Model returns the installed graph, or nil.
func (e *Engine) Model() *domain.Graph {
	return e.graph
}

// Machine returns the machine walked by the engine. Callers must only read it.
func (e *Engine) Machine() machine.Machine {
	return e.machine
}

// EnableExtended swaps in a fresh plain or extended machine. The traversal restarts.
func (e *Engine) EnableExtended(extended bool) error {
	e.extended = extended
	e.machine = e.newMachine()
	if e.graph != nil {
		if err := e.machine.SetModel(e.graph); err != nil {
			return err
		}
	}
	e.bind()
	return nil
}

// Extended reports whether the engine runs an extended machine.
func (e *Engine) Extended() bool {
	return e.extended
}

// EnableBacktrack toggles backtracking on the current and future machines.
func (e *Engine) EnableBacktrack(enabled bool) {
	e.backtrack = enabled
	e.machine.SetBacktrack(enabled)
}

// AddCondition adds a stop condition by kind. The first condition is used alone;
// adding more combines them with a logical OR.
func (e *Engine) AddCondition(kind conditions.Kind, value string) error {
	c, err := conditions.New(kind, value, e.clock)
	if err != nil {
		return err
	}
	e.AddStopCondition(c)
	return nil
}

// AddStopCondition adds a condition built by the caller, with the same policy as AddCondition.
// Conditions added earlier keep their progress.
func (e *Engine) AddStopCondition(c conditions.StopCondition) {
	c.SetMachine(e.machine)
	e.condition = conditions.Combine(e.condition, c)
	e.logger.Debug("stop condition set", "condition", e.condition.String())
	if e.generator != nil {
		e.generator.SetStopCondition(e.condition)
	}
}

// Condition returns the stop condition, or nil.
func (e *Engine) Condition() conditions.StopCondition {
	return e.condition
}

// Fulfilment reports the progress of the stop condition between 0 and 1.
func (e *Engine) Fulfilment() float64 {
	if e.condition == nil {
		return 0
	}
	return e.condition.Fulfilment()
}

// SetGenerator replaces the generator by kind. opts are appended to the engine defaults
// (logger, hooks, seed and template).
func (e *Engine) SetGenerator(kind generators.Kind, opts ...generators.Option) error {
	defaults := []generators.Option{
		generators.WithLogger(e.logger),
		generators.WithLifecycleHooks(e.hooks),
	}
	if e.seed != nil {
		defaults = append(defaults, generators.WithSeed(*e.seed))
	}
	if e.template != "" {
		defaults = append(defaults, generators.WithTemplate(e.template))
	}
	gen, err := generators.New(kind, append(defaults, opts...)...)
	if err != nil {
		return err
	}
	e.SetPathGenerator(gen)
	return nil
}

// SetPathGenerator installs a generator built by the caller.
func (e *Engine) SetPathGenerator(gen generators.PathGenerator) {
	gen.SetMachine(e.machine)
	gen.SetStopCondition(e.condition)
	e.generator = gen
	e.logger.Debug("generator set", "generator", gen.String())
}

// Generator returns the generator, or nil.
func (e *Engine) Generator() generators.PathGenerator {
	return e.generator
}

// SetTemplate sets the stub template. It applies to the current generator when it is a
// code stub generator, and to code stub generators created later.
func (e *Engine) SetTemplate(template string) {
	e.template = template
	if stub, ok := e.generator.(*generators.CodeStub); ok {
		stub.SetTemplate(template)
	}
}

func (e *Engine) requireGenerator() error {
	if e.generator == nil {
		return fmt.Errorf("%w: no generator has been defined", domain.ErrNotConfigured)
	}
	return nil
}

// HasNextStep reports whether NextStep can produce another step.
func (e *Engine) HasNextStep() (bool, error) {
	if err := e.requireGenerator(); err != nil {
		return false, err
	}
	return e.generator.HasNext()
}

// NextStep walks one step and returns its navigate and verify labels.
func (e *Engine) NextStep() (domain.Step, error) {
	if err := e.requireGenerator(); err != nil {
		return domain.Step{}, err
	}
	step, err := e.generator.Next()
	if err != nil {
		e.logger.Error("step generation failed", "error", err)
		return domain.Step{}, err
	}
	return step, nil
}

// CurrentState returns the label of the current vertex, or "" before the first step.
func (e *Engine) CurrentState() string {
	return e.machine.CurrentStateName()
}

// Backtrack undoes the last step. It reports whether anything was undone.
func (e *Engine) Backtrack() bool {
	return e.machine.Backtrack()
}

// DataValue returns a variable of the data space. It fails with domain.ErrNotExtended
// on a plain machine.
func (e *Engine) DataValue(name string) (string, error) {
	ds, ok := e.machine.(machine.DataSource)
	if !ok {
		return "", fmt.Errorf("data value %q: %w: enable the extended machine", name, domain.ErrNotExtended)
	}
	return ds.DataValue(name)
}

// Statistics returns the structured coverage report.
func (e *Engine) Statistics() machine.Statistics {
	return e.machine.Statistics()
}

// StatisticsCompact returns coverage ratios.
func (e *Engine) StatisticsCompact() string {
	return e.machine.StatisticsCompact()
}

// StatisticsString returns coverage ratios and counts.
func (e *Engine) StatisticsString() string {
	return e.machine.StatisticsString()
}

// StatisticsVerbose returns coverage ratios, counts and every uncovered element.
func (e *Engine) StatisticsVerbose() string {
	return e.machine.StatisticsVerbose()
}
