package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/mbt/pkg/adapters/dispatch"
	"github.com/aretw0/mbt/pkg/adapters/process"
	"github.com/aretw0/mbt/pkg/ports"
)

// NewExecutor returns the executor for cfg. With a commands file, steps run the
// registered external commands. Without one, every step succeeds (dry run).
func NewExecutor(cfg Config, logger *slog.Logger) (ports.Executor, error) {
	if cfg.Commands == "" {
		return dispatch.NewTable().Fallback(func(ctx context.Context, args ...string) error {
			return nil
		}), nil
	}
	commands, err := process.LoadCommands(cfg.Commands)
	if err != nil {
		return nil, err
	}
	if len(commands) == 0 {
		return nil, fmt.Errorf("no commands found in %s", cfg.Commands)
	}
	return process.NewRunner(
		process.WithRegistry(commands),
		process.WithBaseDir(filepath.Dir(cfg.Commands)),
		process.WithSkipUnregistered(cfg.SkipUnregistered),
		process.WithLogger(logger),
	), nil
}

// Echo wraps an executor and prints every invocation to out before running it.
func Echo(next ports.Executor, out io.Writer) ports.Executor {
	return ports.ExecutorFunc(func(ctx context.Context, name string, args ...string) error {
		if len(args) > 0 {
			fmt.Fprintf(out, "%s %s\n", name, strings.Join(args, " "))
		} else {
			fmt.Fprintln(out, name)
		}
		return next.Invoke(ctx, name, args...)
	})
}
