package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/mbt"
	"github.com/aretw0/mbt/internal/cli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// offlineCmd prints a generated sequence without running anything.
var offlineCmd = &cobra.Command{
	Use:   "offline",
	Short: "Generate a test sequence and print it",
	Long: `Walks the model until the stop condition is fulfilled and prints every step
(navigate label, then verify label). Statistics are written to stderr at the end.`,
	Run: func(cmd *cobra.Command, args []string) {
		jsonMode, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		eng := newEngine(cmd)
		enc := json.NewEncoder(os.Stdout)
		var stopErr error
		for ctx.Err() == nil {
			ok, err := eng.HasNextStep()
			if err != nil {
				fail("Error: %v", err)
			}
			if !ok {
				stopErr = eng.Stopped()
				break
			}
			step, err := eng.NextStep()
			if err != nil {
				fail("Error: %v", err)
			}
			if jsonMode {
				_ = enc.Encode(step)
				continue
			}
			fmt.Println(step.Navigate)
			if step.Verify != "" {
				fmt.Println(step.Verify)
			}
		}
		if sig := ctx.Signal(); sig != nil {
			cli.PrintSystemMessage(os.Stderr, "Interrupted by %v", sig)
		}
		if err := cli.PrintStatistics(os.Stderr, "Coverage", eng.Statistics(), verbose); err != nil {
			fail("Error: %v", err)
		}
		if stopErr != nil {
			fail("Error: %v", stopErr)
		}
	},
}

var offlineRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a sequence and execute every step",
	Long: `Executes each navigate and verify label as a command. With --commands, labels are
mapped to external programs; without it every step succeeds (dry run).`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		eng := newEngine(cmd)
		exec, err := cli.NewExecutor(cfg, logger)
		if err != nil {
			fail("Error: %v", err)
		}
		if err := eng.Execute(ctx, cli.Echo(exec, os.Stdout)); err != nil {
			if sig := ctx.Signal(); sig != nil {
				cli.PrintSystemMessage(os.Stderr, "Interrupted by %v", sig)
			} else {
				fail("Execution failed: %v", err)
			}
		}
		if err := cli.PrintStatistics(os.Stderr, "Coverage", eng.Statistics(), verbose); err != nil {
			fail("Error: %v", err)
		}
	},
}

var offlineRecordCmd = &cobra.Command{
	Use:   "record [sequence-id]",
	Short: "Generate a sequence and store it for replay",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		eng := newEngine(cmd)
		storage := openStorage()
		defer storage.Close()

		id := cli.NewSequenceID(eng.Name, time.Now())
		if len(args) > 0 {
			id = args[0]
		}
		seq, err := cli.RecordAndSave(ctx, eng, storage, id, cfg.Store.LockTTL)
		if err != nil {
			fail("Error recording sequence: %v", err)
		}
		cli.PrintSystemMessage(os.Stdout, "Recorded sequence '%s' (%d steps)", seq.ID, len(seq.Steps))
	},
}

var offlineReplayCmd = &cobra.Command{
	Use:   "replay <sequence-id>",
	Short: "Execute a stored sequence against the model",
	Long: `Walks the model along a recorded sequence, checking that every step is still
admissible, and executes each label like 'offline run'.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		storage := openStorage()
		defer storage.Close()
		seq, err := storage.Store.Load(ctx, args[0])
		if err != nil {
			fail("Error loading sequence '%s': %v", args[0], err)
		}

		eng := newEngine(cmd)
		if err := eng.Replay(seq); err != nil {
			fail("Error: %v", err)
		}
		exec, err := cli.NewExecutor(cfg, logger)
		if err != nil {
			fail("Error: %v", err)
		}
		if err := eng.Execute(ctx, cli.Echo(exec, os.Stdout)); err != nil {
			fail("Replay failed: %v", err)
		}
		if err := cli.PrintStatistics(os.Stderr, "Replay coverage", eng.Statistics(), verbose); err != nil {
			fail("Error: %v", err)
		}
	},
}

var offlineListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored sequences",
	Run: func(cmd *cobra.Command, args []string) {
		storage := openStorage()
		defer storage.Close()

		ids, err := storage.Store.List(cmd.Context())
		if err != nil {
			fail("Error listing sequences: %v", err)
		}
		if len(ids) == 0 {
			fmt.Println("No stored sequences found.")
			return
		}
		fmt.Println("Stored Sequences:")
		for _, id := range ids {
			fmt.Println("- " + id)
		}
	},
}

var offlineShowCmd = &cobra.Command{
	Use:   "show <sequence-id>",
	Short: "Print a stored sequence",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		storage := openStorage()
		defer storage.Close()

		seq, err := storage.Store.Load(cmd.Context(), args[0])
		if err != nil {
			fail("Error loading sequence '%s': %v", args[0], err)
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(seq); err != nil {
			fail("Error encoding sequence: %v", err)
		}
		_ = enc.Close()
	},
}

var offlineRmCmd = &cobra.Command{
	Use:   "rm <sequence-id>...",
	Short: "Remove one or more stored sequences",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		storage := openStorage()
		defer storage.Close()
		hasError := false

		for _, id := range args {
			if err := storage.Store.Delete(cmd.Context(), id); err != nil {
				fmt.Printf("Error removing '%s': %v\n", id, err)
				hasError = true
			} else {
				fmt.Printf("Removed sequence '%s'\n", id)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(offlineCmd)
	offlineCmd.AddCommand(offlineRunCmd, offlineRecordCmd, offlineReplayCmd, offlineListCmd, offlineShowCmd, offlineRmCmd)

	addGenerationFlags(offlineCmd)
	offlineCmd.Flags().Bool("json", false, "Print steps as NDJSON")
	offlineCmd.Flags().BoolP("verbose", "v", false, "List unvisited elements in the statistics")

	for _, c := range []*cobra.Command{offlineRunCmd, offlineRecordCmd, offlineReplayCmd} {
		addGenerationFlags(c)
	}
	for _, c := range []*cobra.Command{offlineRunCmd, offlineReplayCmd} {
		c.Flags().String("commands", "", "Commands file mapping labels to programs")
		c.Flags().Bool("skip-unregistered", false, "Let labels without a command pass")
		c.Flags().BoolP("verbose", "v", false, "List unvisited elements in the statistics")
	}

	offlineCmd.PersistentFlags().String("store", "", "Sequence store: file, memory, redis, sqlite or mysql")
	offlineCmd.PersistentFlags().String("store-path", "", "Directory of the file store, or the sqlite database file")
	offlineCmd.PersistentFlags().String("redis-url", "", "Address of the redis store, or the mysql DSN")
}

// newEngine builds the engine for cfg with the generation hooks, or exits.
func newEngine(cmd *cobra.Command) *mbt.Engine {
	eng, _, err := cli.NewEngine(cmd.Context(), cfg, logger, generationHooks())
	if err != nil {
		fail("Error initializing engine: %v", err)
	}
	return eng
}

func openStorage() *cli.Storage {
	storage, err := cli.OpenStorage(cfg.Store)
	if err != nil {
		fail("Error opening store: %v", err)
	}
	return storage
}
