package app

import (
	"errors"
	"fmt"
	"runtime"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Program is argv[0] of the launcher; it prefixes the summary line.
	Program string

	// The four positional launcher arguments, already coerced.
	Iterations  int
	Size        int
	Temperature float64
	PlotFlag    int

	// SweepPaths are HCL files or directories for batch runs.
	SweepPaths []string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	WorkerCount     int
	Seed            uint64
	OutputDir       string
	WriteSummary    bool
	ProgressURL     string
	UploadURL       string
}

// NewConfig validates the ambient settings and fills defaults. The simulation
// arguments are passed through untouched; the entry point validates them.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.WorkerCount < 0 {
		return nil, errors.New("workers must not be negative")
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = runtime.NumCPU()
	}

	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck-port %d", cfg.HealthcheckPort)
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}

	if len(cfg.SweepPaths) > 0 && cfg.UploadURL != "" {
		return nil, errors.New("upload-url takes a single pre-signed URL and cannot be combined with a sweep")
	}

	return &cfg, nil
}
