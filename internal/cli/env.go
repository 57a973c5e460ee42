package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the built-in flag defaults.
const (
	EnvLogLevel  = "LL_LOG_LEVEL"
	EnvLogFormat = "LL_LOG_FORMAT"
	EnvWorkers   = "LL_WORKERS"
	EnvOutputDir = "LL_OUTPUT_DIR"
	EnvSeed      = "LL_SEED"
)

type defaults struct {
	logLevel  string
	logFormat string
	workers   int
	outputDir string
	seed      uint64
}

// LoadDotEnv loads environment variables from path. Missing files are
// ignored and variables already set in the process win.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func envDefaults() (defaults, error) {
	d := defaults{logLevel: "info", logFormat: "text", outputDir: "."}
	if v := os.Getenv(EnvLogLevel); v != "" {
		d.logLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		d.logFormat = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		d.outputDir = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return defaults{}, fmt.Errorf("invalid %s %q: expected an integer", EnvWorkers, v)
		}
		d.workers = n
	}
	if v := os.Getenv(EnvSeed); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return defaults{}, fmt.Errorf("invalid %s %q: expected an unsigned integer", EnvSeed, v)
		}
		d.seed = n
	}
	return d, nil
}
