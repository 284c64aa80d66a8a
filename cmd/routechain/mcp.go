package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/routechain/internal/cli"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the router and its sequencer as an MCP Server.
Agents drive the routes through the visit, state, wait and graph tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		if transport != "stdio" && transport != "sse" {
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Stop()

		// Stdout carries JSON-RPC on stdio, so nothing else may write there.
		log.SetOutput(os.Stderr)
		app, err := cli.NewApp(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing routechain: %v\n", err)
			os.Exit(1)
		}
		srv := app.MCPServer()

		switch transport {
		case "stdio":
			app.Logger.Info("Starting Routechain MCP Server (Stdio)...")
			err = srv.ServeStdio(ctx, os.Stdin, os.Stdout)
		case "sse":
			app.Logger.Info("Starting Routechain MCP Server (SSE)", "port", port)
			err = srv.ServeSSE(ctx, port)
		}
		if drainErr := app.Shutdown(cli.ShutdownTimeout); drainErr != nil {
			app.Logger.Warn("shutdown incomplete", "error", drainErr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
			app.Logger.Error("MCP Server execution failed", "error", err)
			os.Exit(1)
		}
		app.Logger.Info("MCP Server stopped gracefully", "signal", ctx.Signal())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
