package engine

import (
	"context"

	"github.com/virtualphotonics/mcbatch/internal/logging"
	"github.com/virtualphotonics/mcbatch/internal/simulation"
)

// Record is the engine used when no engine command is configured. It writes
// the concrete input into the run directory and reports success, which makes
// a batch a dry run whose layout can be inspected.
type Record struct{}

// RunOne implements Engine.
func (Record) RunOne(ctx context.Context, in *simulation.Input, outputDir string) RunStatus {
	if err := ctx.Err(); err != nil {
		return Failed("%v", err)
	}
	path, err := writeInput(in, outputDir)
	if err != nil {
		return Failed("write input: %v", err)
	}
	logging.FromContext(ctx).Debug("recorded input", "run", in.OutputName, "path", path)
	return Succeeded("input recorded")
}
