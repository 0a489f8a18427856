package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quantoak/nightscan/internal/pipeline"
)

// scheduleCmd runs the scanner as a long-lived process on the cron schedule.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the nightly scan on its cron schedule",
	Long: `Starts a long-lived process that runs the scan cycle on the configured
cron schedule (PIPELINE_SCHEDULE, six fields with seconds).

A trigger that fires while a cycle is still running is dropped; cycles never
overlap.

Example:
  go run ./cmd/nightscan schedule`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	sched := pipeline.NewScheduler(a.log)
	if err := sched.AddJob(pipeline.NewScanJob(a.orchestrator, a.cfg.Pipeline.Schedule)); err != nil {
		return err
	}

	sched.Start()
	fmt.Printf("scheduler running (%s), press Ctrl+C to stop\n", a.cfg.Pipeline.Schedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
