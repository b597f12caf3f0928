package sweep

import (
	"fmt"

	"github.com/virtualphotonics/mcbatch/internal/simulation"
)

// ExpandedRun is one concrete input of a batch.
type ExpandedRun struct {
	Input  *simulation.Input
	Suffix string
}

// Name returns the run's output name.
func (r ExpandedRun) Name() string { return r.Input.OutputName }

// Materialize applies each combination to a deep copy of base.
//
// The output name of each run is the base name (or outName when non-empty)
// followed by the combination suffix; an override replaces only the base.
// base is never modified.
func Materialize(base *simulation.Input, combos []Combination, outName string, acc FieldAccessor) ([]ExpandedRun, error) {
	name := base.OutputName
	if outName != "" {
		name = outName
	}

	runs := make([]ExpandedRun, 0, len(combos))
	for _, c := range combos {
		in := base.Clone()
		for _, a := range c {
			if err := acc.Set(in, a.Name, a.Value); err != nil {
				return nil, fmt.Errorf("apply %s=%s: %w", a.Name, FormatValue(a.Value), err)
			}
		}
		suffix := c.Suffix()
		in.OutputName = name + suffix
		runs = append(runs, ExpandedRun{Input: in, Suffix: suffix})
	}
	return runs, nil
}

// Singles wraps independent inputs as a batch without sweeps. Each input
// keeps its own output name.
func Singles(inputs []*simulation.Input) []ExpandedRun {
	runs := make([]ExpandedRun, len(inputs))
	for i, in := range inputs {
		runs[i] = ExpandedRun{Input: in.Clone()}
	}
	return runs
}
