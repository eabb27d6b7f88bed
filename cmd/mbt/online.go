package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/mbt/internal/cli"
	"github.com/aretw0/mbt/internal/presentation/tui"
	httpAdapter "github.com/aretw0/mbt/pkg/adapters/http"
	"github.com/aretw0/mbt/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var onlineCmd = &cobra.Command{
	Use:   "online",
	Short: "Serve steps one at a time over HTTP",
	Long: `Starts an HTTP service that hands out the generated steps on request. A test driver
asks for the next step, performs it, and may inspect the current state, data values and
coverage. Prometheus metrics are exposed on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)
		hooks := metrics.Hooks().Merge(generationHooks())

		eng, m, err := cli.NewEngine(cmd.Context(), cfg, logger, hooks)
		if err != nil {
			fail("Error initializing engine: %v", err)
		}

		handler := httpAdapter.NewHandler(eng, httpAdapter.WithLogger(logger), httpAdapter.WithMetrics(reg))

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if tui.IsTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr)
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting mbt online service on %s\n", srv.Addr)
			fmt.Printf("Serving model: %s (%s)\n", m.Name, eng.Generator())
			serverErrors <- srv.ListenAndServe()
		}()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case <-ctx.Done():
			fmt.Printf("\nStart shutdown... Signal: %v\n", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			cli.PrintSystemMessage(os.Stdout, "Final coverage: %s", eng.StatisticsCompact())
			fmt.Println("mbt online service stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(onlineCmd)
	addGenerationFlags(onlineCmd)
	onlineCmd.Flags().StringP("port", "p", "8887", "Port to listen on")
}
