package main

import (
	"fmt"

	"github.com/aretw0/mbt/internal/cli"
	"github.com/aretw0/mbt/internal/validator"
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [model]",
	Short: "Check the model for consistency",
	Long: `Loads the model and reports structural problems: unknown endpoints, duplicate
vertices, guarded Start edges and states unreachable from Start. States without
outgoing edges are reported as warnings.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 && !cmd.Flags().Changed("model") {
			cfg.Model = args[0]
		}

		m, err := cli.LoadModel(cmd.Context(), cfg)
		if err != nil {
			fail("Validation failed: %v", err)
		}

		for _, v := range validator.DeadEnds(m.Graph) {
			fmt.Printf("Warning: %s has no outgoing edges\n", domain.CompleteVertexName(v))
		}
		fmt.Printf("Model '%s' is valid: %d states, %d edges, %d requirements ✅\n",
			m.Name, len(m.Graph.States()), len(m.Graph.Edges()), len(m.Graph.Requirements()))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
