// Package main provides the ratescope CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "ratescope",
		Short: "Hotel ingestion and competitor tracking backend",
		Long: `Ratescope crawls an external hotel search provider city by city,
deduplicates hotels under stable identity keys, and maintains per-hotel
competitor sets for rate comparison.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newIngestCmd(),
		newServeCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
