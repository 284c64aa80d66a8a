package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/aretw0/routechain/internal/config"
	"github.com/spf13/cobra"
)

// DefaultConfigFile is read when --config is not given.
const DefaultConfigFile = "routechain.yaml"

var rootCmd = &cobra.Command{
	Use:   "routechain",
	Short: "Routechain runs route transition hooks in order",
	Long: `Routechain sequences the onExit/onEnter hooks of a route tree on every transition.
Routes, guards and hook chains are declared in a YAML file.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", DefaultConfigFile, "Route and adapter configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")
}

// loadConfig reads the file named by --config. A missing default file yields
// the default configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
