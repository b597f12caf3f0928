// Package validate checks concrete simulation inputs before a batch runs.
//
// The Gate is all-or-nothing: a batch either passes as a whole or is
// rejected before any run starts.
package validate

import (
	"fmt"
	"strings"

	mcerrors "github.com/virtualphotonics/mcbatch/internal/errors"
	"github.com/virtualphotonics/mcbatch/internal/simulation"
	"github.com/virtualphotonics/mcbatch/internal/sweep"
)

// Result is the outcome of validating one input.
// Rule and Remarks are empty when IsValid is true.
type Result struct {
	IsValid bool
	Rule    string
	Remarks string
}

// Valid returns a passing Result.
func Valid() Result {
	return Result{IsValid: true}
}

// Invalid returns a failing Result for rule.
func Invalid(rule, remarks string) Result {
	return Result{Rule: rule, Remarks: remarks}
}

// Validator checks one input.
type Validator interface {
	Validate(in *simulation.Input) Result
}

// Func adapts a function to the Validator interface.
type Func func(in *simulation.Input) Result

// Validate implements Validator.
func (f Func) Validate(in *simulation.Input) Result { return f(in) }

// Failure identifies a rejected run.
type Failure struct {
	Index  int
	Run    string
	Result Result
}

// Verdict summarises a Gate pass over a batch.
type Verdict struct {
	Checked int
	Failed  int
	// First is the earliest failing run in batch order, nil if all passed.
	First *Failure
}

// Passed reports whether every run was valid.
func (v Verdict) Passed() bool { return v.First == nil }

// Err returns a ValidationFailure error for the first failing run, or nil.
func (v Verdict) Err() error {
	if v.First == nil {
		return nil
	}
	return mcerrors.Validation(v.First.Run, v.First.Result.Rule, v.First.Result.Remarks)
}

// RuleUniqueOutputName rejects runs that would share an output directory.
const RuleUniqueOutputName = "UniqueOutputName"

// Gate applies validator to every run in order. A run whose output name
// (compared case-insensitively) repeats an earlier run's name also fails.
func Gate(runs []sweep.ExpandedRun, validator Validator) Verdict {
	verdict := Verdict{Checked: len(runs)}
	seen := make(map[string]int, len(runs))
	for i, r := range runs {
		res := validator.Validate(r.Input)
		if res.IsValid {
			key := strings.ToLower(r.Name())
			if prev, dup := seen[key]; dup {
				res = Invalid(RuleUniqueOutputName,
					fmt.Sprintf("output name %q is already used by run %d", r.Name(), prev+1))
			} else {
				seen[key] = i
			}
		}
		if res.IsValid {
			continue
		}
		verdict.Failed++
		if verdict.First == nil {
			verdict.First = &Failure{Index: i, Run: r.Name(), Result: res}
		}
	}
	return verdict
}
