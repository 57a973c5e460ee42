package executor

import (
	"context"
	"fmt"

	"github.com/specialistvlad/lebwohllasher/internal/ctxlog"
)

// worker is the processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan <-chan *Job, cancel context.CancelFunc, workerID int) {
	defer e.wg.Done()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for j := range readyChan {
		workerLogger := logger.With("workerID", workerID, "job", j.Name)

		if ctx.Err() != nil {
			j.err = fmt.Errorf("%w: %w", ErrSkipped, ctx.Err())
			j.setState(Failed)
			continue
		}

		workerLogger.Debug("Worker picked up job.")
		j.setState(Running)
		if err := j.Fn(ctxlog.WithLogger(ctx, workerLogger)); err != nil {
			workerLogger.Error("Job failed.", "error", err)
			j.err = err
			j.setState(Failed)
			cancel()
			continue
		}

		workerLogger.Debug("Job succeeded.")
		j.setState(Done)
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}
