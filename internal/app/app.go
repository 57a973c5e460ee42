package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/specialistvlad/lebwohllasher/internal/output"
	"github.com/specialistvlad/lebwohllasher/internal/progress"
)

// EntryPoint is the simulation routine the launcher dispatches to with the
// program name and the four coerced arguments.
type EntryPoint func(ctx context.Context, program string, iterations, size int, temperature float64, plotFlag int) error

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	outMu  sync.Mutex
	logger *slog.Logger
	config *Config

	entry     EntryPoint
	publisher progress.Publisher
	uploader  *output.Uploader
	now       func() time.Time

	httpServer *http.Server
	status     status
}

// Option customizes an App.
type Option func(*App)

// WithEntryPoint replaces the simulation entry point.
func WithEntryPoint(fn EntryPoint) Option {
	return func(a *App) { a.entry = fn }
}

// WithPublisher sets the progress publisher instead of dialing ProgressURL.
func WithPublisher(p progress.Publisher) Option {
	return func(a *App) { a.publisher = p }
}

// WithHTTPClient sets the client used for result uploads.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) { a.uploader = output.NewUploader(c) }
}

// WithClock overrides the time source used for output file names.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// NewApp is the constructor for the main application. Human-facing output
// (usage, summary lines) goes to outW and structured logs to logW.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) *App {
	a := &App{
		outW:     outW,
		logger:   newLogger(cfg.LogLevel, cfg.LogFormat, logW),
		config:   cfg,
		uploader: output.NewUploader(nil),
		now:      time.Now,
	}
	a.entry = a.Simulate
	for _, opt := range opts {
		opt(a)
	}
	a.logger.Debug("App configured.", "workers", cfg.WorkerCount, "output_dir", cfg.OutputDir)
	return a
}

// Config returns the application's configuration. This is primarily for testing.
func (a *App) Config() *Config {
	return a.config
}
