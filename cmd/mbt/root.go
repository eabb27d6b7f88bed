package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/mbt/internal/cli"
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/spf13/cobra"
)

var (
	cfg     cli.Config
	logger  *slog.Logger
	noHooks domain.LifecycleHooks

	flushTracing = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "mbt",
	Short: "mbt generates test sequences from state machine models",
	Long: `mbt walks a finite state machine model (optionally extended with guards and actions)
and produces test steps until a stop condition is fulfilled.

Steps can be printed, executed against external commands, recorded for later replay,
or served one at a time over HTTP and MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		optional := !cmd.Flags().Changed("config")
		loaded, err := cli.LoadConfig(path, optional)
		if err != nil {
			return err
		}
		cfg = loaded
		if err := applyFlags(cmd, &cfg); err != nil {
			return err
		}
		logger, err = cli.NewLogger(cfg.Log)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return flushTracing(context.Background())
	},
}

// generationHooks returns the hooks for an engine built by a command and arranges
// for the tracer to be flushed when the command returns.
func generationHooks() domain.LifecycleHooks {
	hooks, flush := cli.GenerationHooks(cfg.Log, logger)
	flushTracing = flush
	return hooks
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", cli.DefaultConfigFile, "Run configuration file")
	rootCmd.PersistentFlags().StringP("model", "m", "", "Model file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().Bool("trace", false, "Log generation events as OpenTelemetry spans (debug level)")
}

// addGenerationFlags registers the flags shared by every command that builds an engine.
func addGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("generator", "g", "", "Path generator: random, shortest, requirements or stub")
	cmd.Flags().StringArray("condition", nil, "Stop condition as kind=value (repeatable, combined with OR)")
	cmd.Flags().Bool("extended", false, "Use the extended machine (guards, actions and data)")
	cmd.Flags().Bool("backtrack", false, "Back out of dead ends instead of failing")
	cmd.Flags().Uint64("seed", 0, "Seed for the random generator")
	cmd.Flags().StringToString("data", nil, "Initial data values as name=value")
}

// applyFlags overrides configuration values with the flags the user set explicitly.
func applyFlags(cmd *cobra.Command, c *cli.Config) error {
	flags := cmd.Flags()
	if flags.Changed("model") {
		c.Model, _ = flags.GetString("model")
	}
	if flags.Changed("log-level") {
		c.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		c.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("trace") {
		c.Log.Trace, _ = flags.GetBool("trace")
		if c.Log.Trace && !flags.Changed("log-level") {
			c.Log.Level = "debug"
		}
	}
	if flags.Changed("generator") {
		c.Generator, _ = flags.GetString("generator")
	}
	if flags.Changed("condition") {
		raw, _ := flags.GetStringArray("condition")
		c.Conditions = c.Conditions[:0]
		for _, s := range raw {
			cond, err := cli.ParseCondition(s)
			if err != nil {
				return err
			}
			c.Conditions = append(c.Conditions, cond)
		}
	}
	if flags.Changed("extended") {
		c.Extended, _ = flags.GetBool("extended")
	}
	if flags.Changed("backtrack") {
		c.Backtrack, _ = flags.GetBool("backtrack")
	}
	if flags.Changed("seed") {
		seed, _ := flags.GetUint64("seed")
		c.Seed = &seed
	}
	if flags.Changed("data") {
		data, _ := flags.GetStringToString("data")
		if c.Data == nil {
			c.Data = make(map[string]string, len(data))
		}
		for k, v := range data {
			c.Data[k] = v
		}
	}
	if flags.Changed("template") {
		c.Template, _ = flags.GetString("template")
	}
	if flags.Changed("commands") {
		c.Commands, _ = flags.GetString("commands")
	}
	if flags.Changed("skip-unregistered") {
		c.SkipUnregistered, _ = flags.GetBool("skip-unregistered")
	}
	if flags.Changed("store") {
		c.Store.Kind, _ = flags.GetString("store")
	}
	if flags.Changed("store-path") {
		c.Store.Path, _ = flags.GetString("store-path")
	}
	if flags.Changed("redis-url") {
		c.Store.URL, _ = flags.GetString("redis-url")
	}
	return nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
