package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/lebwohllasher/internal/ctxlog"
	"github.com/specialistvlad/lebwohllasher/internal/executor"
	"github.com/specialistvlad/lebwohllasher/internal/output"
	"github.com/specialistvlad/lebwohllasher/internal/progress"
	"github.com/specialistvlad/lebwohllasher/internal/simulation"
	"github.com/specialistvlad/lebwohllasher/internal/sweep"
)

const progressDialTimeout = 10 * time.Second

// Run hands the configured arguments to the entry point exactly once.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	stop := a.start(ctx)
	defer func() { err = errors.Join(err, stop()) }()

	cfg := a.config
	return a.entry(ctx, cfg.Program, cfg.Iterations, cfg.Size, cfg.Temperature, cfg.PlotFlag)
}

// RunSweep loads the configured HCL files and executes every run on the
// worker pool. The first failing run cancels the others.
func (a *App) RunSweep(ctx context.Context, loader *sweep.Loader) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.RunSweep method started.", "paths", a.config.SweepPaths)

	runs, err := loader.Load(ctx, a.config.SweepPaths...)
	if err != nil {
		return fmt.Errorf("failed to load sweep: %w", err)
	}

	stop := a.start(ctx)
	defer func() { err = errors.Join(err, stop()) }()

	jobs := make([]*executor.Job, 0, len(runs))
	for i, r := range runs {
		params := r.Params
		params.Workers = 1
		if params.Seed == 0 && a.config.Seed != 0 {
			params.Seed = a.config.Seed + uint64(i)
		}
		name := r.Name
		jobs = append(jobs, executor.NewJob(name, func(ctx context.Context) error {
			return a.runOne(ctx, name, a.config.Program, params)
		}))
	}

	a.logger.Info("🚀 Starting sweep...", "runs", len(jobs), "workers", a.config.WorkerCount)
	if err := executor.New(jobs, a.config.WorkerCount).Execute(ctx); err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	a.logger.Info("🏁 Sweep finished.")
	return nil
}

// Simulate is the default entry point: one Lebwohl-Lasher run with the
// ambient settings from the app configuration.
func (a *App) Simulate(ctx context.Context, program string, iterations, size int, temperature float64, plotFlag int) error {
	return a.runOne(ctx, "", program, simulation.Params{
		Iterations:  iterations,
		Size:        size,
		Temperature: temperature,
		PlotFlag:    plotFlag,
		Seed:        a.config.Seed,
		Workers:     a.config.WorkerCount,
	})
}

// start brings up the health server and the progress publisher and returns
// the function that tears them down.
func (a *App) start(ctx context.Context) func() error {
	a.startHealthcheckServer(ctx)

	if a.publisher == nil {
		a.publisher = progress.Nop{}
		if a.config.ProgressURL != "" {
			pub, err := progress.DialSocketIO(ctx, a.config.ProgressURL, progressDialTimeout)
			if err != nil {
				a.logger.Warn("Progress publisher unavailable, continuing without it.", "error", err)
			} else {
				a.publisher = pub
			}
		}
	}

	return func() error {
		return errors.Join(a.publisher.Close(), a.closeHealthcheckServer(ctx))
	}
}

func (a *App) runOne(ctx context.Context, name, program string, params simulation.Params) error {
	if name != "" {
		ctx = ctxlog.With(ctx, "run", name)
	}
	logger := ctxlog.FromContext(ctx)
	a.status.started.Add(1)

	res, err := simulation.Run(ctx, params, progress.Observer(a.publisher, name), a.stepTracker())
	if err != nil {
		a.status.failed.Add(1)
		return fmt.Errorf("simulation failed: %w", err)
	}

	a.printLine(res.SummaryLine(program))

	w := &output.Writer{
		Dir:     a.config.OutputDir,
		Name:    name,
		Program: program,
		Summary: a.config.WriteSummary,
		Now:     a.now,
	}
	art, err := w.Write(ctx, res)
	if err != nil {
		a.status.failed.Add(1)
		return fmt.Errorf("failed to write results: %w", err)
	}
	logger.Info("Results written.", "data", art.Data, "snapshots", len(art.Snapshot), "summary", art.Summary)

	if a.config.UploadURL != "" {
		if err := a.uploader.Upload(ctx, art.Data, a.config.UploadURL); err != nil {
			a.status.failed.Add(1)
			return err
		}
	}

	if err := progress.Finished(ctx, a.publisher, name, res); err != nil {
		logger.Warn("Failed to publish run completion.", "error", err)
	}
	a.status.finished.Add(1)
	return nil
}

func (a *App) stepTracker() simulation.Observer {
	return simulation.ObserverFunc(func(_ context.Context, s simulation.Step) {
		a.status.lastStep.Store(int64(s.Index))
	})
}

// printLine serializes writes to outW across concurrent sweep runs.
func (a *App) printLine(line string) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.outW, line)
}
