// Package executor runs independent jobs on a fixed-size worker pool. The
// first failing job cancels the shared context; jobs that have not started by
// then are skipped.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/lebwohllasher/internal/ctxlog"
)

// ErrSkipped is recorded for jobs that never ran because the run was canceled.
var ErrSkipped = errors.New("skipped")

// State is the execution state of a job.
type State int32

const (
	// Pending indicates the job is queued.
	Pending State = iota
	// Running indicates a worker is executing the job.
	Running
	// Done indicates the job completed successfully.
	Done
	// Failed indicates the job returned an error or was skipped.
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	default:
		return "failed"
	}
}

// Job is one unit of work.
type Job struct {
	Name string
	Fn   func(ctx context.Context) error

	state atomic.Int32
	err   error
}

// NewJob creates a pending job.
func NewJob(name string, fn func(ctx context.Context) error) *Job {
	return &Job{Name: name, Fn: fn}
}

// State atomically retrieves the job's state.
func (j *Job) State() State {
	return State(j.state.Load())
}

func (j *Job) setState(s State) {
	j.state.Store(int32(s))
}

// Err returns the job's error once the executor has finished.
func (j *Job) Err() error {
	return j.err
}

// Executor runs jobs concurrently.
type Executor struct {
	jobs       []*Job
	numWorkers int
	wg         sync.WaitGroup
}

// New creates an executor for jobs. A non-positive worker count means one
// worker per job.
func New(jobs []*Job, numWorkers int) *Executor {
	if numWorkers <= 0 || numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}
	return &Executor{jobs: jobs, numWorkers: numWorkers}
}

// Execute runs every job and returns the first real failure, wrapped with the
// names of all failed jobs.
func (e *Executor) Execute(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if len(e.jobs) == 0 {
		logger.Warn("No jobs to execute.")
		return nil
	}

	readyChan := make(chan *Job, len(e.jobs))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, j := range e.jobs {
		readyChan <- j
	}
	close(readyChan)

	e.wg.Add(e.numWorkers)
	logger.Debug("Starting worker pool.", "workers", e.numWorkers, "jobs", len(e.jobs))
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}
	e.wg.Wait()
	logger.Debug("All jobs completed.")

	var (
		failed    []string
		rootCause error
	)
	for _, j := range e.jobs {
		if j.State() != Failed {
			continue
		}
		if errors.Is(j.err, ErrSkipped) || errors.Is(j.err, context.Canceled) {
			continue
		}
		failed = append(failed, j.Name)
		if rootCause == nil {
			rootCause = j.err
		}
	}
	if rootCause != nil {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failed, ", "), rootCause)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}
