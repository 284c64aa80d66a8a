package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the route configuration for consistency",
	Long:  `Loads the configuration and reports unknown actions, conditions and redirect targets, and duplicate routes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration is valid! %d routes, %d engines ✅\n", len(cfg.Routes), len(cfg.Engines))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
