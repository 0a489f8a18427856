package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nightscan",
	Short: "Overnight equity opportunity scanner",
	Long: `nightscan - overnight batch equity scanner

Fetches market data with two-provider fallback, validates and scores a
configured universe of instruments, aggregates news sentiment, and emits a
ranked CSV report plus a JSON summary.

Usage:
  go run ./cmd/nightscan [command]

Examples:
  go run ./cmd/nightscan scan
  go run ./cmd/nightscan schedule
  go run ./cmd/nightscan serve`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "universe/strategy YAML (default from STRATEGY_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
