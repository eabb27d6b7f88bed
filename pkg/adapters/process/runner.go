package process

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/aretw0/mbt/pkg/domain"
)

// ArgEnv is the environment variable carrying the step parameter, if any.
const ArgEnv = "MBT_ARG"

// StepEnv is the environment variable carrying the step name.
const StepEnv = "MBT_STEP"

// Runner is a ports.Executor that runs an allow-listed external command per step name.
// The step parameter is passed through the environment, never as a command-line flag.
type Runner struct {
	registry  map[string]CommandConfig
	baseDir   string
	skipUnset bool
	logger    *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(commands map[string]CommandConfig) RunnerOption {
	return func(r *Runner) {
		for name, c := range commands {
			c.Name = name
			r.registry[name] = c
		}
	}
}

// WithBaseDir sets the working directory of executed commands.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithSkipUnregistered makes steps without a command succeed instead of failing
// with domain.ErrCommandNotFound. Useful for models whose verify labels are informational.
func WithSkipUnregistered(skip bool) RunnerOption {
	return func(r *Runner) {
		r.skipUnset = skip
	}
}

// WithLogger sets the logger for command output.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]CommandConfig),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name, command string, args ...string) {
	r.registry[name] = CommandConfig{Name: name, Command: command, Args: args}
}

// Invoke runs the command registered for name.
func (r *Runner) Invoke(ctx context.Context, name string, args ...string) error {
	c, ok := r.registry[name]
	if !ok {
		if r.skipUnset {
			r.logger.Debug("no command registered, skipping", "step", name)
			return nil
		}
		return fmt.Errorf("%w: %s", domain.ErrCommandNotFound, name)
	}

	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	cmd.Dir = r.baseDir
	env := cmd.Environ()
	for k, v := range c.Environment {
		env = append(env, k+"="+v)
	}
	env = append(env, StepEnv+"="+name)
	if len(args) > 0 {
		env = append(env, ArgEnv+"="+strings.Join(args, " "))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q failed: %w: %s", c.Command, err, strings.TrimSpace(stderr.String()))
	}
	if out := strings.TrimSpace(stdout.String()); out != "" {
		r.logger.Debug("command output", "step", name, "output", out)
	}
	return nil
}
