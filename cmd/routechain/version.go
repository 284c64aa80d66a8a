package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/routechain"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of routechain",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("routechain version %s\n", strings.TrimSpace(routechain.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
