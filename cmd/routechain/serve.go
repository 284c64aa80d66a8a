package main

import (
	"fmt"
	"os"

	"github.com/aretw0/routechain/internal/cli"
	httpAdapter "github.com/aretw0/routechain/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP control surface",
	Long: `Starts the router and its sequencer behind a JSON API over HTTP (visit, state, wait, graph,
events, metrics). Sequences are journaled to Redis when redis.addr is configured.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Stop()

		streams := httpAdapter.NewStreamManager()
		app, err := cli.NewApp(ctx, cfg, cli.WithHooks(streams.LifecycleHooks()))
		if err != nil {
			fmt.Printf("Error initializing routechain: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Starting Routechain Server on %s\n", cfg.HTTP.Addr)
		serveErr := app.Serve(ctx, cfg.HTTP.Addr, app.Handler(streams))
		if err := app.Shutdown(cli.ShutdownTimeout); err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		if serveErr != nil {
			fmt.Printf("Server error: %v\n", serveErr)
			os.Exit(1)
		}
		if sig := ctx.Signal(); sig != "" {
			fmt.Printf("\nRoutechain Server stopped gracefully (%s)\n", sig)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (defaults to http.addr)")
}
