package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/churnlens/backend/pkg/config"
	"github.com/wonny/churnlens/backend/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32 // fail this many times before succeeding
	calls    atomic.Int32
}

func (j *countingJob) Name() string { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if n <= j.failures {
		return errors.New("boom")
	}
	return nil
}

func newTestScheduler(retries int) *Scheduler {
	return New(config.SchedulerConfig{MaxRetries: retries, RetryDelay: time.Millisecond}, logger.Nop())
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler(0)

	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "0 0 3 * * *"}))
	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "0 0 3 * * *"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "b", schedule: "not a cron"}))

	assert.Equal(t, []string{"a"}, s.GetAllJobs())

	next, err := s.NextRun("a")
	require.NoError(t, err)
	assert.True(t, next.IsZero(), "next run is only known after Start")
}

func TestRunNowRetries(t *testing.T) {
	s := newTestScheduler(2)
	job := &countingJob{name: "flaky", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "flaky")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), job.calls.Load())
}

func TestRunNowGivesUp(t *testing.T) {
	s := newTestScheduler(1)
	job := &countingJob{name: "broken", schedule: "@daily", failures: 10}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "broken")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, "boom", result.Error)

	stats := s.GetJobStats()["broken"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	assert.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestRunNowCancelledDuringRetryWait(t *testing.T) {
	s := New(config.SchedulerConfig{MaxRetries: 5, RetryDelay: time.Hour}, logger.Nop())
	job := &countingJob{name: "slow", schedule: "@daily", failures: 10}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := s.RunNow(ctx, "slow")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, context.DeadlineExceeded.Error(), result.Error)
}

func TestUnknownJob(t *testing.T) {
	s := newTestScheduler(0)

	_, err := s.RunNow(context.Background(), "missing")
	assert.Error(t, err)
	assert.Error(t, s.RunJob("missing"))
	assert.Error(t, s.RemoveJob("missing"))
	_, err = s.GetJobHistory("missing")
	assert.Error(t, err)
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler(0)
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}))
	require.NoError(t, s.RemoveJob("a"))

	assert.Empty(t, s.GetAllJobs())
	assert.Empty(t, s.GetJobStats())
}

func TestScheduledRun(t *testing.T) {
	s := newTestScheduler(0)
	job := &countingJob{name: "tick", schedule: "@every 1s"}
	require.NoError(t, s.AddJob(job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestJobHistoryLimit(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+10; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, historyLimit)
	assert.Len(t, h.GetLatestResults(5), 5)
	assert.Len(t, h.GetFailedResults(), historyLimit/2)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 1e-9)
	assert.Empty(t, (&JobHistory{}).GetLatestResults(3))
}
