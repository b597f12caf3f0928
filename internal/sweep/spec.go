// Package sweep expands parameter-sweep directives into an ordered,
// deterministic batch of concrete simulation inputs.
//
// A directive becomes an Axis (one parameter, an ordered list of values).
// Expand combines axes into a cartesian product of Combinations, and
// Materialize applies each Combination to a base template.
package sweep

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	mcerrors "github.com/virtualphotonics/mcbatch/internal/errors"
)

// maxAxisValues caps the number of generated values per axis so a typo in a
// delta or count cannot allocate an unbounded slice.
const maxAxisValues = 10000

// deltaTolerance is the fraction of a step by which the last delta sample may
// overshoot stop and still be included. It absorbs round-off such as
// (0.03-0.01)/0.01 evaluating to 1.9999999999999998.
const deltaTolerance = 1e-9

// Mode identifies how a directive generates axis values.
type Mode int

const (
	// ModeCount samples count evenly spaced values from start to stop.
	ModeCount Mode = iota
	// ModeDelta steps from start to stop by delta.
	ModeDelta
	// ModeList uses literal values.
	ModeList
)

func (m Mode) String() string {
	switch m {
	case ModeCount:
		return "count"
	case ModeDelta:
		return "delta"
	case ModeList:
		return "list"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Spec generates the values of one sweep axis.
// The set of implementations is closed: CountSpec, DeltaSpec and ListSpec.
type Spec interface {
	// Values returns the ordered axis values or an InvalidSweepSpec error.
	Values() ([]float64, error)
	Mode() Mode
	isSpec()
}

// CountSpec samples Count evenly spaced values from Start to Stop inclusive.
type CountSpec struct {
	Start, Stop float64
	Count       int
}

// DeltaSpec samples Start, Start+Delta, ... not exceeding Stop.
type DeltaSpec struct {
	Start, Stop, Delta float64
}

// ListSpec holds literal values. Count must equal len(Literal).
type ListSpec struct {
	Count   int
	Literal []float64
}

func (CountSpec) isSpec() {}
func (DeltaSpec) isSpec() {}
func (ListSpec) isSpec()  {}

func (CountSpec) Mode() Mode { return ModeCount }
func (DeltaSpec) Mode() Mode { return ModeDelta }
func (ListSpec) Mode() Mode  { return ModeList }

// Values implements Spec. Value i is start + i*(stop-start)/(count-1),
// snapped to 15 significant digits.
func (s CountSpec) Values() ([]float64, error) {
	if s.Count < 1 {
		return nil, mcerrors.InvalidSweep("count must be at least 1, got %d", s.Count)
	}
	if s.Count > maxAxisValues {
		return nil, mcerrors.InvalidSweep("count %d exceeds the limit of %d values", s.Count, maxAxisValues)
	}
	if err := checkFinite(s.Start, s.Stop); err != nil {
		return nil, err
	}
	if s.Count == 1 {
		return []float64{s.Start}, nil
	}
	values := floats.Span(make([]float64, s.Count), s.Start, s.Stop)
	for i, v := range values {
		values[i] = snap(v)
	}
	return values, nil
}

// Values implements Spec. The i-th value is computed as start + i*delta
// rather than by repeated addition.
func (s DeltaSpec) Values() ([]float64, error) {
	if err := checkFinite(s.Start, s.Stop, s.Delta); err != nil {
		return nil, err
	}
	if s.Delta == 0 {
		return nil, mcerrors.InvalidSweep("delta must be nonzero")
	}
	span := s.Stop - s.Start
	if span != 0 && math.Signbit(span) != math.Signbit(s.Delta) {
		return nil, mcerrors.InvalidSweep("delta %v does not step from %v towards %v", s.Delta, s.Start, s.Stop)
	}
	steps := math.Floor(span/s.Delta + deltaTolerance)
	if steps+1 > maxAxisValues {
		return nil, mcerrors.InvalidSweep("delta %v yields more than %d values", s.Delta, maxAxisValues)
	}
	n := int(steps) + 1
	values := make([]float64, n)
	for i := range values {
		values[i] = snap(s.Start + float64(i)*s.Delta)
	}
	return values, nil
}

// Values implements Spec. Literal values are returned verbatim.
func (s ListSpec) Values() ([]float64, error) {
	if s.Count < 1 {
		return nil, mcerrors.InvalidSweep("list count must be at least 1, got %d", s.Count)
	}
	if s.Count != len(s.Literal) {
		return nil, mcerrors.InvalidSweep("list count %d does not match the %d values given", s.Count, len(s.Literal))
	}
	if err := checkFinite(s.Literal...); err != nil {
		return nil, err
	}
	return append([]float64(nil), s.Literal...), nil
}

func checkFinite(vs ...float64) error {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return mcerrors.InvalidSweep("value %v is not a finite number", v)
		}
	}
	return nil
}

// ParseSpec parses the comma-separated arguments of a sweep directive.
// The first argument is the parameter name; the rest depend on mode:
//
//	count: name,start,stop,count
//	delta: name,start,stop,delta
//	list:  name,count,v1,...,vcount
func ParseSpec(mode Mode, args []string) (string, Spec, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", nil, mcerrors.InvalidSweep("missing sweep parameter name")
	}
	name := strings.ToLower(strings.TrimSpace(args[0]))
	rest := args[1:]

	switch mode {
	case ModeCount:
		if len(rest) != 3 {
			return name, nil, mcerrors.InvalidSweep("%s: expected name,start,stop,count", name)
		}
		nums, err := parseFloats(name, rest[:2])
		if err != nil {
			return name, nil, err
		}
		count, err := parseCount(name, rest[2])
		if err != nil {
			return name, nil, err
		}
		return name, CountSpec{Start: nums[0], Stop: nums[1], Count: count}, nil

	case ModeDelta:
		if len(rest) != 3 {
			return name, nil, mcerrors.InvalidSweep("%s: expected name,start,stop,delta", name)
		}
		nums, err := parseFloats(name, rest)
		if err != nil {
			return name, nil, err
		}
		return name, DeltaSpec{Start: nums[0], Stop: nums[1], Delta: nums[2]}, nil

	case ModeList:
		if len(rest) < 1 {
			return name, nil, mcerrors.InvalidSweep("%s: expected name,count,v1,...", name)
		}
		count, err := parseCount(name, rest[0])
		if err != nil {
			return name, nil, err
		}
		values, err := parseFloats(name, rest[1:])
		if err != nil {
			return name, nil, err
		}
		return name, ListSpec{Count: count, Literal: values}, nil
	}

	return name, nil, mcerrors.InvalidSweep("%s: unknown sweep mode %v", name, mode)
}

func parseFloats(name string, args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return nil, mcerrors.InvalidSweep("%s: invalid number %q", name, a)
		}
		out[i] = v
	}
	return out, nil
}

func parseCount(name, arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, mcerrors.InvalidSweep("%s: invalid count %q", name, arg)
	}
	return n, nil
}
