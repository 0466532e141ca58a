package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	calls    int32
	failures int32 // fail the first N calls
	done     chan struct{}
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if n <= atomic.LoadInt32(&j.failures) {
		return errors.New("boom")
	}
	if j.done != nil {
		close(j.done)
	}
	return nil
}

func TestAddJob_Duplicate(t *testing.T) {
	s := New(logger.Nop())

	job := &fakeJob{name: "daily", schedule: "0 0 17 * * *"}
	require.NoError(t, s.AddJob(job))

	err := s.AddJob(&fakeJob{name: "daily", schedule: "0 0 18 * * *"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddJob_BadSchedule(t *testing.T) {
	s := New(logger.Nop())

	err := s.AddJob(&fakeJob{name: "broken", schedule: "not-a-cron"})
	require.Error(t, err)
}

func TestRunJob_NotFound(t *testing.T) {
	s := New(logger.Nop())
	require.Error(t, s.RunJob("missing"))
}

func TestRunJob_RetriesUntilSuccess(t *testing.T) {
	s := New(logger.Nop()).WithRetry(3, time.Millisecond)

	job := &fakeJob{
		name:     "flaky",
		schedule: "0 0 17 * * *",
		failures: 2,
		done:     make(chan struct{}),
	}
	require.NoError(t, s.AddJob(job))
	require.NoError(t, s.RunJob("flaky"))

	select {
	case <-job.done:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not complete")
	}

	assert.Eventually(t, func() bool {
		history, err := s.History("flaky")
		if err != nil {
			return false
		}
		return len(history.Results) == 1 && history.Results[0].Success
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(3), atomic.LoadInt32(&job.calls))
}

func TestRunJobWait(t *testing.T) {
	s := New(logger.Nop())

	job := &fakeJob{name: "sync", schedule: "@daily"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJobWait(context.Background(), "sync"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.calls))

	require.Error(t, s.RunJobWait(context.Background(), "missing"))
}

func TestJobs(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "@hourly"}))

	assert.ElementsMatch(t, []string{"a", "b"}, s.Jobs())
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}

	h.AddResult(JobResult{JobName: "x", Success: true})
	h.AddResult(JobResult{JobName: "x", Success: false})
	h.AddResult(JobResult{JobName: "x", Success: true})

	assert.Equal(t, 1, h.FailureCount())
	assert.InDelta(t, 2.0/3.0, h.SuccessRate(), 0.0001)
	assert.Len(t, h.LatestResults(2), 2)
	assert.Empty(t, (&JobHistory{}).LatestResults(5))
	assert.Equal(t, 0.0, (&JobHistory{}).SuccessRate())
}

func TestJobHistory_Bounded(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{JobName: "x", Success: true})
	}
	assert.Len(t, h.Results, historyLimit)
}
