// Package engine connects the batch dispatcher to the photon-transport engine.
//
// The engine is an external collaborator: it receives one concrete input and
// the directory its results go to, and reports a RunStatus. Every engine
// writes the input it ran with into the run directory as <name>.yaml.
package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/virtualphotonics/mcbatch/internal/simulation"
)

// RunStatus is the outcome of a single run.
type RunStatus struct {
	Success bool
	Message string
}

// Succeeded returns a successful status.
func Succeeded(msg string) RunStatus {
	return RunStatus{Success: true, Message: msg}
}

// Failed returns a failed status with a formatted message.
func Failed(format string, args ...any) RunStatus {
	return RunStatus{Message: fmt.Sprintf(format, args...)}
}

// Engine executes one simulation.
type Engine interface {
	RunOne(ctx context.Context, in *simulation.Input, outputDir string) RunStatus
}

// InputPath returns the path the concrete input of in is written to.
func InputPath(in *simulation.Input, outputDir string) string {
	return filepath.Join(outputDir, in.OutputName+simulation.FileExt)
}

// writeInput saves in into outputDir and returns the file path.
func writeInput(in *simulation.Input, outputDir string) (string, error) {
	path := InputPath(in, outputDir)
	if err := simulation.Save(path, in); err != nil {
		return "", err
	}
	return path, nil
}

// New returns the engine for argv: a Command when argv is non-empty,
// otherwise a Record engine.
func New(argv []string) (Engine, error) {
	if len(argv) == 0 {
		return Record{}, nil
	}
	return NewCommand(argv)
}
