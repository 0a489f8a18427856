package pipeline

import (
	"context"
	"errors"
)

// ScanJob adapts the orchestrator to the scheduler.
type ScanJob struct {
	orchestrator *Orchestrator
	schedule     string
}

// NewScanJob creates the nightly scan job with the configured cron schedule.
func NewScanJob(o *Orchestrator, schedule string) *ScanJob {
	return &ScanJob{
		orchestrator: o,
		schedule:     schedule,
	}
}

// Name implements Job.
func (j *ScanJob) Name() string { return "nightly-scan" }

// Schedule implements Job.
func (j *ScanJob) Schedule() string { return j.schedule }

// Run executes one cycle. An overlapping trigger is not an error: the
// running cycle keeps going and the trigger is dropped.
func (j *ScanJob) Run(ctx context.Context) error {
	_, err := j.orchestrator.RunCycle(ctx)
	if errors.Is(err, ErrCycleInFlight) {
		return nil
	}
	return err
}
