package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantoak/nightscan/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	runs     atomic.Int32
	err      error
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestScheduler_AddJobRejectsDuplicates(t *testing.T) {
	s := NewScheduler(logger.Nop())

	require.NoError(t, s.AddJob(&countingJob{name: "scan", schedule: "0 30 17 * * *"}))
	err := s.AddJob(&countingJob{name: "scan", schedule: "0 0 18 * * *"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestScheduler_AddJobRejectsBadCronExpression(t *testing.T) {
	s := NewScheduler(logger.Nop())

	err := s.AddJob(&countingJob{name: "scan", schedule: "not a schedule"})
	require.Error(t, err)
}

func TestScheduler_RunJobExecutesAndRecordsResult(t *testing.T) {
	s := NewScheduler(logger.Nop())
	job := &countingJob{name: "scan", schedule: "0 30 17 * * *"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("scan"))

	require.Eventually(t, func() bool {
		return job.runs.Load() == 1
	}, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(s.Results()) == 1
	}, time.Second, 10*time.Millisecond)

	res := s.Results()[0]
	assert.Equal(t, "scan", res.JobName)
	assert.True(t, res.Success)
	assert.Empty(t, res.Error)
}

func TestScheduler_RunJobUnknownName(t *testing.T) {
	s := NewScheduler(logger.Nop())
	require.Error(t, s.RunJob("missing"))
}

func TestScheduler_FailedJobRecordedWithError(t *testing.T) {
	s := NewScheduler(logger.Nop())
	job := &countingJob{name: "scan", schedule: "0 30 17 * * *", err: errors.New("upstream down")}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("scan"))

	require.Eventually(t, func() bool {
		return len(s.Results()) == 1
	}, time.Second, 10*time.Millisecond)

	res := s.Results()[0]
	assert.False(t, res.Success)
	assert.Equal(t, "upstream down", res.Error)
}

func TestScanJob_DropsOverlappingTrigger(t *testing.T) {
	o, _ := newTestOrchestrator(t, testUniverse(), &fakeFetcher{}, &fakeSentiment{}, &fakeBias{})
	o.mu.Lock()
	o.running = true
	o.mu.Unlock()

	job := NewScanJob(o, "0 30 17 * * *")
	assert.NoError(t, job.Run(context.Background()))
}
