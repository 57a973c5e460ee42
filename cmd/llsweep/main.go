package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/lebwohllasher/internal/app"
	"github.com/specialistvlad/lebwohllasher/internal/cli"
	"github.com/specialistvlad/lebwohllasher/internal/sweep"
)

// main is the entrypoint for the batch sweep runner.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := cli.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args); err != nil {
		code := 1
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.Code
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(code)
	}
}

func run(ctx context.Context, outW, logW io.Writer, argv []string, opts ...app.Option) (err error) {
	program, args := "llsweep", []string(nil)
	if len(argv) > 0 {
		program, args = argv[0], argv[1:]
	}

	appConfig, shouldExit, err := cli.ParseSweep(program, args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sweep panicked: %v", r)
		}
	}()

	return app.NewApp(outW, logW, appConfig, opts...).RunSweep(ctx, sweep.NewLoader())
}
