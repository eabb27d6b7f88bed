package ports

import "context"

// Executor runs generated steps. name is the label with guard and action stripped;
// args holds the parameter of a "name param" label, if any.
type Executor interface {
	Invoke(ctx context.Context, name string, args ...string) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, name string, args ...string) error

// Invoke calls f.
func (f ExecutorFunc) Invoke(ctx context.Context, name string, args ...string) error {
	return f(ctx, name, args...)
}
