package runner

import (
	"errors"
	"time"

	"github.com/virtualphotonics/mcbatch/internal/engine"
	mcerrors "github.com/virtualphotonics/mcbatch/internal/errors"
)

// RunResult is the outcome of one dispatched run.
type RunResult struct {
	Index    int
	Name     string
	Dir      string
	Status   engine.RunStatus
	Started  time.Time
	Duration time.Duration
	// Attempted is false when the run never reached the engine.
	Attempted bool
}

// Report holds every run result in plan order.
type Report struct {
	Results []RunResult
	Workers int
	Elapsed time.Duration
}

// Succeeded returns the number of successful runs.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Status.Success {
			n++
		}
	}
	return n
}

// Failed returns the number of failed runs.
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// FirstFailure returns the earliest failed run in plan order, or nil.
func (r *Report) FirstFailure() *RunResult {
	for i := range r.Results {
		if !r.Results[i].Status.Success {
			return &r.Results[i]
		}
	}
	return nil
}

// State returns StateCompleted when every run succeeded, else StateFailed.
func (r *Report) State() State {
	if r.FirstFailure() != nil {
		return StateFailed
	}
	return StateCompleted
}

// Err returns nil when every run succeeded. Otherwise it returns the
// RunFailure of the first failed run, joined with the others in plan order.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if !res.Status.Success {
			errs = append(errs, mcerrors.RunFailure(res.Name, res.Status.Message, nil))
		}
	}
	return combineErrors(errs)
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}
