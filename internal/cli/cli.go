package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/specialistvlad/lebwohllasher/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// UsageLine is printed whenever the launcher is not given exactly four
// positional arguments.
func UsageLine(program string) string {
	return fmt.Sprintf("Usage: %s <ITERATIONS> <SIZE> <TEMPERATURE> <PLOTFLAG>", program)
}

// ambientFlags are the options shared by the launcher and the sweep runner.
type ambientFlags struct {
	logFormat   *string
	logLevel    *string
	workers     *int
	seed        *uint64
	outputDir   *string
	summary     *bool
	healthPort  *int
	progressURL *string
	uploadURL   *string
}

func registerAmbientFlags(fs *flag.FlagSet, d defaults) *ambientFlags {
	return &ambientFlags{
		logFormat:   fs.String("log-format", d.logFormat, "Log output format. Options: 'text' or 'json'."),
		logLevel:    fs.String("log-level", d.logLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'."),
		workers:     fs.Int("workers", d.workers, "Goroutines for lattice reductions, or concurrent runs in a sweep. 0 uses every CPU."),
		seed:        fs.Uint64("seed", d.seed, "Random seed. 0 picks one from the clock."),
		outputDir:   fs.String("output-dir", d.outputDir, "Directory for data files, snapshots and summaries."),
		summary:     fs.Bool("summary", false, "Also write a YAML run summary."),
		healthPort:  fs.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled."),
		progressURL: fs.String("progress-url", "", "socket.io endpoint that receives per-step progress events."),
		uploadURL:   fs.String("upload-url", "", "Pre-signed URL the data file is PUT to after the run."),
	}
}

func (f *ambientFlags) apply(cfg *app.Config) {
	cfg.LogFormat = strings.ToLower(*f.logFormat)
	cfg.LogLevel = strings.ToLower(*f.logLevel)
	cfg.WorkerCount = *f.workers
	cfg.Seed = *f.seed
	cfg.OutputDir = *f.outputDir
	cfg.WriteSummary = *f.summary
	cfg.HealthcheckPort = *f.healthPort
	cfg.ProgressURL = *f.progressURL
	cfg.UploadURL = *f.uploadURL
}

// Parse processes the launcher's command line. args excludes the program
// name. It returns a populated Config, a boolean indicating the program should
// exit cleanly without simulating, or an ExitError.
func Parse(program string, args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	d, err := envDefaults()
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	flagSet := flag.NewFlagSet(program, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprintf(output, `%s

Runs a Lebwohl-Lasher Monte Carlo simulation on a SIZE×SIZE lattice.

Arguments:
  ITERATIONS   Number of Monte Carlo steps (integer).
  SIZE         Lattice side length (integer).
  TEMPERATURE  Reduced temperature (float).
  PLOTFLAG     0 none, 1 energy snapshots, 2 angle snapshots, other raw angles (integer).

Options:
`, UsageLine(program))
		flagSet.PrintDefaults()
	}
	ambient := registerAmbientFlags(flagSet, d)

	opts, pos := splitArgs(flagSet, args)
	if err := flagSet.Parse(opts); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	pos = append(flagSet.Args(), pos...)

	if len(pos) != 4 {
		slog.Debug("Wrong number of positional arguments, printing usage.", "count", len(pos))
		fmt.Fprintln(output, UsageLine(program))
		return nil, true, nil
	}

	cfg := app.Config{Program: program}
	if cfg.Iterations, err = parseInt("ITERATIONS", pos[0]); err != nil {
		return nil, false, err
	}
	if cfg.Size, err = parseInt("SIZE", pos[1]); err != nil {
		return nil, false, err
	}
	if cfg.Temperature, err = parseFloat("TEMPERATURE", pos[2]); err != nil {
		return nil, false, err
	}
	if cfg.PlotFlag, err = parseInt("PLOTFLAG", pos[3]); err != nil {
		return nil, false, err
	}
	ambient.apply(&cfg)

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// ParseSweep processes the sweep runner's command line: options followed by
// one or more HCL files or directories.
func ParseSweep(program string, args []string, output io.Writer) (*app.Config, bool, error) {
	d, err := envDefaults()
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	flagSet := flag.NewFlagSet(program, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprintf(output, `Usage: %s [options] <PATH>...

Runs every run and sweep block found in the given .hcl files or directories.

Options:
`, program)
		flagSet.PrintDefaults()
	}
	ambient := registerAmbientFlags(flagSet, d)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	cfg := app.Config{Program: program, SweepPaths: flagSet.Args()}
	ambient.apply(&cfg)

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, false, nil
}

// splitArgs separates the leading options from the positional arguments.
// Positionals start at "--", at the first argument without a leading dash, or
// at the first numeric argument that is not the value of an option, so a
// negative ITERATIONS such as "-5" is not mistaken for an option.
func splitArgs(fs *flag.FlagSet, args []string) (opts, positional []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return args[:i], args[i+1:]
		case arg == "-" || !strings.HasPrefix(arg, "-") || isNumber(arg):
			return args[:i], args[i:]
		}

		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if f := fs.Lookup(name); f != nil && !isBoolFlag(f) {
			i++
		}
	}
	return args, nil
}

func isBoolFlag(f *flag.Flag) bool {
	bf, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && bf.IsBoolFlag()
}

func isNumber(raw string) bool {
	_, err := strconv.ParseFloat(stripDigitSeparators(raw), 64)
	return err == nil
}

// stripDigitSeparators trims surrounding space and removes underscores that
// sit between two digits ("1_000" is 1000). Any other underscore is left in
// place so the number fails to parse.
func stripDigitSeparators(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.Contains(s, "_") {
		return s
	}
	isDigit := func(b byte) bool { return b >= '0' && b <= '9' }
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '_' {
			if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
				return s
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func parseInt(name, raw string) (int, error) {
	v, err := strconv.ParseInt(stripDigitSeparators(raw), 10, 0)
	if err != nil {
		return 0, &ExitError{Code: 2, Message: fmt.Sprintf("invalid %s %q: expected an integer", name, raw)}
	}
	return int(v), nil
}

func parseFloat(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(stripDigitSeparators(raw), 64)
	if err != nil {
		return 0, &ExitError{Code: 2, Message: fmt.Sprintf("invalid %s %q: expected a number", name, raw)}
	}
	return v, nil
}
