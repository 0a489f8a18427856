package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// scanCmd runs one full cycle immediately.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan cycle now",
	Long: `Runs one full scan cycle immediately and writes the report artifacts.

The cycle fetches the market regime, scans the configured universe through
the bounded worker pool, scores every instrument, and emits the ranked CSV
plus the JSON summary.

Example:
  go run ./cmd/nightscan scan
  go run ./cmd/nightscan scan --strategy config/universe.yaml`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	// SIGINT/SIGTERM stops dispatching new instruments; in-flight workers
	// drain before the report is written.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cycle, err := a.orchestrator.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("scan cycle: %w", err)
	}

	fmt.Printf("cycle %s finished: %d scored, %d skipped (bias %s %.1f)\n",
		cycle.CycleID, cycle.Scored, cycle.SkippedSize,
		cycle.MarketBias.Label, cycle.MarketBias.Score)
	fmt.Printf("artifacts in %s\n", a.cfg.ReportDir)

	return nil
}
