package sweep

import (
	"fmt"
	"strings"

	mcerrors "github.com/virtualphotonics/mcbatch/internal/errors"
	"github.com/virtualphotonics/mcbatch/internal/simulation"
)

// FieldAccessor locates sweep parameters inside an input. It is supplied by
// the owner of the input schema; simulation.Accessor is the default.
type FieldAccessor interface {
	Get(in *simulation.Input, name string) (float64, error)
	Set(in *simulation.Input, name string, v float64) error
}

// Axis is one swept parameter and its ordered values.
// An Axis is immutable once built.
type Axis struct {
	name   string
	mode   Mode
	values []float64
}

// MaxRuns caps the size of one expanded batch.
const MaxRuns = 100000

// NewAxis generates the values of spec and checks that name resolves in tmpl
// and that every value can be applied to it.
// All failures are InvalidSweepSpec errors; callers report and skip them.
func NewAxis(name string, spec Spec, tmpl *simulation.Input, acc FieldAccessor) (Axis, error) {
	if _, err := acc.Get(tmpl, name); err != nil {
		return Axis{}, mcerrors.InvalidSweep("%v", err)
	}
	values, err := spec.Values()
	if err != nil {
		return Axis{}, err
	}
	scratch := tmpl.Clone()
	for _, v := range values {
		if err := acc.Set(scratch, name, v); err != nil {
			return Axis{}, mcerrors.InvalidSweep("%s=%s: %v", name, FormatValue(v), err)
		}
	}
	return Axis{name: strings.ToLower(name), mode: spec.Mode(), values: values}, nil
}

// Name returns the swept parameter name.
func (a Axis) Name() string { return a.name }

// Mode returns how the values were generated.
func (a Axis) Mode() Mode { return a.mode }

// Len returns the number of values.
func (a Axis) Len() int { return len(a.values) }

// Values returns a copy of the axis values.
func (a Axis) Values() []float64 { return append([]float64(nil), a.values...) }

func (a Axis) String() string {
	parts := make([]string, len(a.values))
	for i, v := range a.values {
		parts[i] = FormatValue(v)
	}
	return fmt.Sprintf("%s=[%s]", a.name, strings.Join(parts, ", "))
}

// Assignment sets one parameter to one value.
type Assignment struct {
	Name  string
	Value float64
}

// Combination is one point of the cartesian product: one assignment per
// axis, in axis declaration order.
type Combination []Assignment

// Suffix returns the output-name suffix, _<name>_<value> per assignment.
func (c Combination) Suffix() string {
	var b strings.Builder
	for _, a := range c {
		b.WriteString("_")
		b.WriteString(a.Name)
		b.WriteString("_")
		b.WriteString(FormatValue(a.Value))
	}
	return b.String()
}

// Expand returns the cartesian product of axes. The first-declared axis
// varies fastest, so two axes a∈{a1,a2} and b∈{b1,b2} yield
// (a1,b1), (a2,b1), (a1,b2), (a2,b2). With no axes Expand returns a single
// empty Combination.
//
// Expand fails without allocating when the product exceeds MaxRuns.
func Expand(axes []Axis) ([]Combination, error) {
	total := 1
	for _, a := range axes {
		n := len(a.values)
		if n == 0 {
			return nil, mcerrors.Newf("sweep %s has no values", a.name)
		}
		if total > MaxRuns/n {
			return nil, mcerrors.Newf("sweeps expand to more than %d runs", MaxRuns)
		}
		total *= n
	}

	combos := make([]Combination, total)
	for i := range combos {
		combos[i] = make(Combination, len(axes))
	}

	repeat := 1
	for dim, a := range axes {
		cycle := len(a.values)
		for i := range combos {
			combos[i][dim] = Assignment{Name: a.name, Value: a.values[(i/repeat)%cycle]}
		}
		repeat *= cycle
	}

	return combos, nil
}
