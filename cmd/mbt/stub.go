package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/mbt/internal/cli"
	"github.com/aretw0/mbt/pkg/generators"
	"github.com/spf13/cobra"
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Generate code stubs for every label of the model",
	Long: `Renders one stub per distinct edge and vertex label. The template may use the
placeholders {LABEL} and {EDGE_VERTEX}; without --template a Go method stub is produced.`,
	Run: func(cmd *cobra.Command, args []string) {
		outPath, _ := cmd.Flags().GetString("out")

		cfg.Generator = string(generators.KindCodeStub)
		eng, _, err := cli.NewEngine(cmd.Context(), cfg, logger, noHooks)
		if err != nil {
			fail("Error initializing engine: %v", err)
		}

		var out io.Writer = os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				fail("Error creating %s: %v", outPath, err)
			}
			defer f.Close()
			out = f
		}

		n := 0
		for {
			ok, err := eng.HasNextStep()
			if err != nil {
				fail("Error: %v", err)
			}
			if !ok {
				break
			}
			step, err := eng.NextStep()
			if err != nil {
				fail("Error: %v", err)
			}
			fmt.Fprintln(out, step.Navigate)
			n++
		}
		if outPath != "" {
			cli.PrintSystemMessage(os.Stderr, "Wrote %d stubs to %s", n, outPath)
		}
	},
}

func init() {
	rootCmd.AddCommand(stubCmd)
	stubCmd.Flags().StringP("template", "t", "", "Stub template file")
	stubCmd.Flags().StringP("out", "o", "", "Write the stubs to a file instead of stdout")
}
