package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExecute_RunsAllJobs(t *testing.T) {
	t.Parallel()

	var count atomic.Int32
	var jobs []*Job
	for i := 0; i < 10; i++ {
		jobs = append(jobs, NewJob("job", func(context.Context) error {
			count.Add(1)
			return nil
		}))
	}

	require.NoError(t, New(jobs, 3).Execute(context.Background()))
	require.Equal(t, int32(10), count.Load())
	for _, j := range jobs {
		require.Equal(t, Done, j.State())
		require.NoError(t, j.Err())
	}
}

func TestExecute_RespectsWorkerLimit(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		running int
		peak    int
	)
	var jobs []*Job
	for i := 0; i < 8; i++ {
		jobs = append(jobs, NewJob("job", func(context.Context) error {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			running--
			mu.Unlock()
			return nil
		}))
	}

	require.NoError(t, New(jobs, 2).Execute(context.Background()))
	require.LessOrEqual(t, peak, 2)
}

func TestExecute_FirstFailureCancelsAndSkips(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	jobs := []*Job{
		NewJob("bad", func(context.Context) error { return boom }),
		NewJob("late-1", func(context.Context) error { return nil }),
		NewJob("late-2", func(context.Context) error { return nil }),
	}

	err := New(jobs, 1).Execute(context.Background())
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "execution failed for bad")
	require.Equal(t, Failed, jobs[0].State())
	for _, j := range jobs[1:] {
		require.Equal(t, Failed, j.State())
		require.ErrorIs(t, j.Err(), ErrSkipped)
	}
}

func TestExecute_RunningJobSeesCancellation(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	started := make(chan struct{})
	jobs := []*Job{
		NewJob("slow", func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}),
		NewJob("bad", func(context.Context) error {
			<-started
			return boom
		}),
	}

	err := New(jobs, 2).Execute(context.Background())
	require.ErrorIs(t, err, boom)
	require.NotContains(t, err.Error(), "slow")
}

func TestExecute_NoJobs(t *testing.T) {
	t.Parallel()

	require.NoError(t, New(nil, 4).Execute(context.Background()))
}

func TestExecute_ParentCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	jobs := []*Job{NewJob("never", func(context.Context) error { return nil })}

	err := New(jobs, 1).Execute(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, jobs[0].Err(), ErrSkipped)
}

func TestState_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "pending", Pending.String())
	require.Equal(t, "running", Running.String())
	require.Equal(t, "done", Done.String())
	require.Equal(t, "failed", Failed.String())
}
