package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/virtualphotonics/mcbatch/internal/logging"
	"github.com/virtualphotonics/mcbatch/internal/simulation"
)

// LogExt is the extension of the per-run engine output file.
const LogExt = ".log"

// Environment passed to the engine process in addition to the inherited one.
const (
	EnvRunName  = "MC_RUN_NAME"
	EnvRunDir   = "MC_RUN_DIR"
	EnvRunInput = "MC_RUN_INPUT"
	EnvBatchID  = "MC_BATCH_ID"
)

const (
	waitDelay    = 5 * time.Second
	maxTailBytes = 512
)

// Command runs an external engine executable once per run as
//
//	argv... <input file> <output dir>
//
// with the run directory as working directory. Its stdout and stderr go to
// <output dir>/<name>.log so concurrent runs do not interleave.
type Command struct {
	argv []string
	env  map[string]string
}

// NewCommand returns a Command for argv. The executable must be on PATH or
// an existing file.
func NewCommand(argv []string) (*Command, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, fmt.Errorf("engine command is empty")
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, fmt.Errorf("engine %q not found: %w", argv[0], err)
	}
	return &Command{argv: append([]string(nil), argv...)}, nil
}

// WithEnv returns a copy of c that adds env to the engine environment.
func (c *Command) WithEnv(env map[string]string) *Command {
	out := &Command{argv: c.argv, env: make(map[string]string, len(c.env)+len(env))}
	for k, v := range c.env {
		out.env[k] = v
	}
	for k, v := range env {
		out.env[k] = v
	}
	return out
}

// Argv returns the configured command line.
func (c *Command) Argv() []string {
	return append([]string(nil), c.argv...)
}

// RunOne implements Engine.
func (c *Command) RunOne(ctx context.Context, in *simulation.Input, outputDir string) RunStatus {
	logger := logging.FromContext(ctx).With("run", in.OutputName, "dir", outputDir)

	inputPath, err := writeInput(in, outputDir)
	if err != nil {
		return Failed("write input: %v", err)
	}
	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return Failed("resolve input path: %v", err)
	}
	absDir, err := filepath.Abs(outputDir)
	if err != nil {
		return Failed("resolve output dir: %v", err)
	}

	logPath := filepath.Join(outputDir, in.OutputName+LogExt)
	logFile, err := os.Create(logPath)
	if err != nil {
		return Failed("create engine log: %v", err)
	}
	defer logFile.Close()

	args := append(append([]string(nil), c.argv[1:]...), absInput, absDir)
	cmd := exec.CommandContext(ctx, c.argv[0], args...)
	cmd.Dir = absDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.WaitDelay = waitDelay
	cmd.Env = append(os.Environ(),
		EnvRunName+"="+in.OutputName,
		EnvRunDir+"="+absDir,
		EnvRunInput+"="+absInput,
	)
	for k, v := range c.env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	logger.Debug("starting engine", "argv", strings.Join(cmd.Args, " "))
	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if err == nil {
		logger.Debug("engine finished", "duration", elapsed)
		return Succeeded(fmt.Sprintf("completed in %s", elapsed.Round(time.Millisecond)))
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Failed("cancelled: %v", ctxErr)
	}

	msg := err.Error()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg = fmt.Sprintf("engine exited with status %d", exitErr.ExitCode())
	}
	if tail := readTail(logPath); tail != "" {
		msg += ": " + tail
	}
	logger.Warn("engine failed", "duration", elapsed, "error", err)
	return Failed("%s", msg)
}

// readTail returns the last line of the engine log, truncated.
func readTail(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	text := strings.TrimSpace(string(data))
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	if len(text) > maxTailBytes {
		text = text[len(text)-maxTailBytes:]
	}
	return strings.TrimSpace(text)
}
