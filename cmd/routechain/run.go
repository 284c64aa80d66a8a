package main

import (
	"fmt"
	"os"

	"github.com/aretw0/routechain"
	"github.com/aretw0/routechain/internal/cli"
	"github.com/aretw0/routechain/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [urls...]",
	Short: "Visit URLs and trace the hooks they run",
	Long: `Builds the configured routes, visits each URL in order (or each line of stdin when none
are given), waits for the hook sequence and prints one line per hook and chain item.`,
	Run: func(cmd *cobra.Command, args []string) {
		quiet, _ := cmd.Flags().GetBool("quiet")

		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Stop()

		if !quiet && tui.IsInteractive(os.Stdout) {
			tui.PrintBanner(os.Stdout, routechain.Version)
		}

		app, err := cli.NewApp(ctx, cfg, cli.WithTrace(os.Stdout))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		var failed int
		if len(args) > 0 {
			failed, err = app.RunURLs(ctx, args, os.Stdout)
		} else {
			failed, err = app.RunScript(ctx, os.Stdin, os.Stdout)
		}
		if drainErr := app.Shutdown(cli.ShutdownTimeout); drainErr != nil {
			fmt.Printf("Warning: %v\n", drainErr)
		}
		if sig := ctx.Signal(); sig != "" {
			fmt.Printf("\nInterrupted: %s\n", sig)
			return
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if failed > 0 {
			fmt.Printf("%d visit(s) failed\n", failed)
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
