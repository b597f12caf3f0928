package runner

import (
	"path/filepath"

	"github.com/virtualphotonics/mcbatch/internal/sweep"
)

const (
	// minParallelWorkers keeps the semaphore from deadlocking.
	minParallelWorkers = 1

	// maxParallelWorkers caps the cpucount directive.
	maxParallelWorkers = 256
)

// Plan is a validated batch ready to dispatch.
type Plan struct {
	Runs []sweep.ExpandedRun

	// Workers is the effective concurrency; Requested is what the user asked for.
	Workers   int
	Requested int

	// OutputPath is the parent of every run directory. Empty means the
	// working directory.
	OutputPath string
}

// NewPlan builds a plan, deriving the effective worker count.
func NewPlan(runs []sweep.ExpandedRun, requested int, outputPath string) Plan {
	return Plan{
		Runs:       runs,
		Workers:    EffectiveWorkers(runs, requested),
		Requested:  requested,
		OutputPath: outputPath,
	}
}

// EffectiveWorkers clamps requested to [1, 256] and returns 1 whenever any
// run writes a persistent database.
func EffectiveWorkers(runs []sweep.ExpandedRun, requested int) int {
	if writesDatabase(runs) {
		return minParallelWorkers
	}
	return min(max(requested, minParallelWorkers), maxParallelWorkers)
}

// SerializedForDatabase reports whether the plan was forced to one worker
// because a run writes a database.
func (p Plan) SerializedForDatabase() bool {
	return p.Requested > 1 && writesDatabase(p.Runs)
}

// RunDir returns the output directory of run r.
func (p Plan) RunDir(r sweep.ExpandedRun) string {
	return filepath.Join(p.OutputPath, r.Name())
}

func writesDatabase(runs []sweep.ExpandedRun) bool {
	for _, r := range runs {
		if r.Input.WritesDatabase() {
			return true
		}
	}
	return false
}
