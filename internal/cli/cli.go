// Package cli provides the command-line interface of mc.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/virtualphotonics/mcbatch/internal/config"
	"github.com/virtualphotonics/mcbatch/internal/directive"
	mcerrors "github.com/virtualphotonics/mcbatch/internal/errors"
	"github.com/virtualphotonics/mcbatch/internal/logging"
	"github.com/virtualphotonics/mcbatch/internal/output"
	"github.com/virtualphotonics/mcbatch/internal/samples"
)

// Version is set at build time.
var Version = "dev"

// app holds the process environment a single invocation runs against.
type app struct {
	out    *output.Writer
	stderr io.Writer // structured log sink
	dir    string    // relative directive paths resolve here
	getenv func(string) string
	numCPU int
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := output.New()
	dir, err := os.Getwd()
	if err != nil {
		out.ErrorPrefix("cannot determine working directory: %v", err)
		return mcerrors.ExitRuntimeError
	}

	a := &app{
		out:    out,
		stderr: os.Stderr,
		dir:    dir,
		getenv: os.Getenv,
		numCPU: runtime.NumCPU(),
	}
	return a.run(ctx, args)
}

func (a *app) run(ctx context.Context, args []string) int {
	settings, warnings, err := config.Load(a.dir, a.getenv)
	if err != nil {
		a.out.ErrorPrefix("%v", err)
		return mcerrors.GetExitCode(err)
	}
	a.out.SetColorMode(settings.Color)
	a.out.SetQuiet(settings.Quiet)
	for _, w := range warnings {
		a.out.Warning("%s", w)
	}

	logger := logging.NewLogger(settings.LogLevel, a.stderr)
	ctx = logging.WithLogger(ctx, logger)

	directives, unknown := directive.Parse(args)
	for _, u := range unknown {
		a.out.Warning("unknown directive %q (ignored)", u)
	}
	if len(directives) == 0 {
		a.printBanner()
		return mcerrors.ExitSuccess
	}

	opts, warnings := directive.Fold(directives, a.numCPU)
	for _, w := range warnings {
		a.out.Warning("%s", w)
		logger.Warn("directive ignored", "reason", w)
	}

	if opts.Help() {
		a.printHelp(opts.HelpTopic())
	}
	if opts.GenInFiles() {
		if err := a.genInFiles(logger); err != nil {
			a.out.ErrorPrefix("%v", err)
			return mcerrors.ExitRuntimeError
		}
	}
	if opts.InfoOnly() {
		return mcerrors.ExitSuccess
	}

	return a.runBatch(ctx, settings, opts)
}

func (a *app) genInFiles(logger *slog.Logger) error {
	paths, err := samples.WriteAll(a.dir)
	if err != nil {
		return err
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	a.out.Info("Generated sample input files:")
	a.out.List(names)
	a.out.Success("Wrote %d sample input files.", len(paths))
	logger.Info("sample templates written", "count", len(paths), "dir", a.dir)
	return nil
}

// resolve interprets p relative to the invocation directory.
func (a *app) resolve(p string) string {
	switch {
	case p == "":
		return a.dir
	case filepath.IsAbs(p):
		return p
	}
	return filepath.Join(a.dir, p)
}
