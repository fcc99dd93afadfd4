// Package cmd provides the command-line interface for the cache simulator.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "cachesim",
	Short: "Cachesim simulates how a fixed-size cache serves a stream of " +
		"memory-like accesses.",
	Long: `Cachesim simulates how a fixed-size cache serves a stream of ` +
		`memory-like accesses, deciding hit/miss outcomes and evictions ` +
		`under direct or two-way set-associative mapping. Runs are recorded ` +
		`to SQLite and can be observed live through the monitoring server.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// A missing .env file is fine; flags and defaults still apply.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
