package main

import (
	"fmt"
	"os"

	"github.com/aretw0/routechain/internal/cli"
	"github.com/aretw0/routechain/internal/logging"
	"github.com/aretw0/routechain/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [url]",
	Short: "Export the route tree visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the configured route tree. When a URL is given,
it is visited first and its active path is highlighted.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		render, _ := cmd.Flags().GetBool("render")

		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		app, err := cli.NewApp(cmd.Context(), cfg, cli.WithLogger(logging.NewNop()))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		if len(args) > 0 {
			if err := app.Visit(cmd.Context(), args[0]); err != nil {
				fmt.Printf("Error visiting %s: %v\n", args[0], err)
				os.Exit(1)
			}
		}

		output := app.Graph()
		if render && tui.IsInteractive(os.Stdout) {
			rendered, err := tui.NewRenderer()(tui.MermaidDocument("Routes", output))
			if err == nil {
				output = rendered
			}
		}
		fmt.Print(output)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("render", false, "Render as markdown when writing to a terminal")
}
