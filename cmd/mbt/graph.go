package main

import (
	"fmt"
	"os"

	"github.com/aretw0/mbt/internal/cli"
	"github.com/aretw0/mbt/internal/presentation/graph"
	"github.com/aretw0/mbt/pkg/adapters/file"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [model]",
	Short: "Export the model",
	Long: `Outputs the model as a Mermaid diagram (graph TD) or as a normalized YAML model file.
With --walk, the model is first walked with the configured generator and the visited
elements are highlighted in the diagram.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 && !cmd.Flags().Changed("model") {
			cfg.Model = args[0]
		}
		format, _ := cmd.Flags().GetString("format")
		walk, _ := cmd.Flags().GetBool("walk")

		m, err := cli.LoadModel(cmd.Context(), cfg)
		if err != nil {
			fail("Error loading model: %v", err)
		}

		switch format {
		case "mermaid":
			var overlay *graph.Overlay
			if walk {
				eng, _, err := cli.NewEngine(cmd.Context(), cfg, logger, noHooks)
				if err != nil {
					fail("Error initializing engine: %v", err)
				}
				if _, err := eng.Record(cmd.Context(), "graph"); err != nil {
					fail("Error walking model: %v", err)
				}
				m.Graph = eng.Model()
				overlay = graph.OverlayFrom(eng.Machine())
			}
			fmt.Print(graph.GenerateMermaid(m.Graph, overlay))
		case "yaml":
			if err := file.WriteYAML(os.Stdout, m.Name, m.Graph, m.Data); err != nil {
				fail("Error writing model: %v", err)
			}
		default:
			fail("Unknown format: %s. Supported: mermaid, yaml", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addGenerationFlags(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: 'mermaid' or 'yaml'")
	graphCmd.Flags().Bool("walk", false, "Walk the model and highlight covered elements")
}
