package sweep

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	mcerrors "github.com/virtualphotonics/mcbatch/internal/errors"
	"github.com/virtualphotonics/mcbatch/internal/simulation"
)

func template() *simulation.Input {
	return &simulation.Input{
		OutputName: "one_layer_ROfRho_FluenceOfRhoAndZ",
		N:          100,
		Source:     map[string]any{"type": "DirectionalPoint"},
		Tissue: simulation.Tissue{
			Type: "MultiLayer",
			Regions: []simulation.Region{
				{Type: "Layer", OP: simulation.OpticalProperties{Mua: 0, Mus: 1e-10, G: 1, N: 1}},
				{Type: "Layer", OP: simulation.OpticalProperties{Mua: 0.01, Mus: 1, G: 0.8, N: 1.4}},
				{Type: "Layer", OP: simulation.OpticalProperties{Mua: 0, Mus: 1e-10, G: 1, N: 1}},
			},
		},
	}
}

func mustAxis(t *testing.T, name string, spec Spec) Axis {
	t.Helper()
	a, err := NewAxis(name, spec, template(), simulation.Accessor{})
	if err != nil {
		t.Fatalf("NewAxis(%s) error = %v", name, err)
	}
	return a
}

func mustExpand(t *testing.T, axes []Axis) []Combination {
	t.Helper()
	combos, err := Expand(axes)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	return combos
}

func suffixes(runs []ExpandedRun) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.Suffix
	}
	return out
}

func names(runs []ExpandedRun) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.Name()
	}
	return out
}

func TestCountSpec_Values(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		spec CountSpec
		want []float64
	}{
		{"three points", CountSpec{Start: 0.01, Stop: 0.03, Count: 3}, []float64{0.01, 0.02, 0.03}},
		{"two points", CountSpec{Start: 0.01, Stop: 0.03, Count: 2}, []float64{0.01, 0.03}},
		{"single point", CountSpec{Start: 0.5, Stop: 9, Count: 1}, []float64{0.5}},
		{"four points", CountSpec{Start: 0.01, Stop: 0.04, Count: 4}, []float64{0.01, 0.02, 0.03, 0.04}},
		{"descending", CountSpec{Start: 20, Stop: 10, Count: 3}, []float64{20, 15, 10}},
		{"small values", CountSpec{Start: 0.0001, Stop: 0.0003, Count: 3}, []float64{0.0001, 0.0002, 0.0003}},
		{"photon counts", CountSpec{Start: 1000000, Stop: 2000000, Count: 2}, []float64{1000000, 2000000}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.spec.Values()
			if err != nil {
				t.Fatalf("Values() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Values() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeltaSpec_Values(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		spec DeltaSpec
		want []float64
	}{
		{"round-off boundary included", DeltaSpec{Start: 0.01, Stop: 0.03, Delta: 0.01}, []float64{0.01, 0.02, 0.03}},
		{"four points", DeltaSpec{Start: 0.01, Stop: 0.04, Delta: 0.01}, []float64{0.01, 0.02, 0.03, 0.04}},
		{"stop not on grid", DeltaSpec{Start: 10, Stop: 20, Delta: 4}, []float64{10, 14, 18}},
		{"exact", DeltaSpec{Start: 10, Stop: 20, Delta: 5}, []float64{10, 15, 20}},
		{"descending", DeltaSpec{Start: 1, Stop: 0.8, Delta: -0.1}, []float64{1, 0.9, 0.8}},
		{"single point", DeltaSpec{Start: 3, Stop: 3, Delta: 1}, []float64{3}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.spec.Values()
			if err != nil {
				t.Fatalf("Values() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Values() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListSpec_Values(t *testing.T) {
	t.Parallel()
	spec := ListSpec{Count: 3, Literal: []float64{0.01, 0.02, 0.03}}
	got, err := spec.Values()
	if err != nil {
		t.Fatalf("Values() error = %v", err)
	}
	if diff := cmp.Diff([]float64{0.01, 0.02, 0.03}, got); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}

	got[0] = 42
	if spec.Literal[0] != 0.01 {
		t.Error("Values() must not alias the spec's slice")
	}

	unordered := ListSpec{Count: 5, Literal: []float64{0.01, 1, 10, 100, 1000}}
	got, _ = unordered.Values()
	if diff := cmp.Diff(unordered.Literal, got); diff != "" {
		t.Errorf("list order not preserved (-want +got):\n%s", diff)
	}
}

func TestSpec_InvalidValues(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		spec Spec
	}{
		{"count zero", CountSpec{Start: 0, Stop: 1, Count: 0}},
		{"count negative", CountSpec{Start: 0, Stop: 1, Count: -2}},
		{"count too large", CountSpec{Start: 0, Stop: 1, Count: maxAxisValues + 1}},
		{"delta zero", DeltaSpec{Start: 0, Stop: 1, Delta: 0}},
		{"delta wrong sign", DeltaSpec{Start: 0, Stop: 1, Delta: -0.1}},
		{"delta too many", DeltaSpec{Start: 0, Stop: 1, Delta: 1e-9}},
		{"list count mismatch", ListSpec{Count: 3, Literal: []float64{0.01, 0.02}}},
		{"list empty", ListSpec{Count: 0}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.spec.Values()
			if !mcerrors.Is(err, mcerrors.KindInvalidSweep) {
				t.Errorf("Values() error = %v, want InvalidSweepSpec", err)
			}
		})
	}
}

func TestParseSpec(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		mode     Mode
		args     []string
		wantName string
		want     Spec
	}{
		{"count", ModeCount, []string{"mua1", "0.01", "0.03", "3"}, "mua1", CountSpec{Start: 0.01, Stop: 0.03, Count: 3}},
		{"count upper case name", ModeCount, []string{"MUS1", "10", "20", "2"}, "mus1", CountSpec{Start: 10, Stop: 20, Count: 2}},
		{"delta", ModeDelta, []string{"mus1", "10", "20", "5"}, "mus1", DeltaSpec{Start: 10, Stop: 20, Delta: 5}},
		{"list", ModeList, []string{"mua1", "3", "0.01", "0.03", "0.04"}, "mua1", ListSpec{Count: 3, Literal: []float64{0.01, 0.03, 0.04}}},
		{"spaces", ModeCount, []string{" g1 ", " 0.7 ", "0.9", " 3"}, "g1", CountSpec{Start: 0.7, Stop: 0.9, Count: 3}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			name, spec, err := ParseSpec(tt.mode, tt.args)
			if err != nil {
				t.Fatalf("ParseSpec() error = %v", err)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if diff := cmp.Diff(tt.want, spec); diff != "" {
				t.Errorf("spec mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSpec_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		mode Mode
		args []string
	}{
		{"no args", ModeCount, nil},
		{"blank name", ModeCount, []string{"", "1", "2", "3"}},
		{"count missing field", ModeCount, []string{"mua1", "0.01", "0.03"}},
		{"count extra field", ModeCount, []string{"mua1", "0.01", "0.03", "3", "4"}},
		{"count not integer", ModeCount, []string{"mua1", "0.01", "0.03", "2.5"}},
		{"bad start", ModeCount, []string{"mua1", "abc", "0.03", "3"}},
		{"delta bad delta", ModeDelta, []string{"mua1", "0.01", "0.03", "x"}},
		{"list no count", ModeList, []string{"mua1"}},
		{"list bad count", ModeList, []string{"mua1", "three", "1", "2", "3"}},
		{"list bad value", ModeList, []string{"mua1", "2", "1", "oops"}},
		{"unknown mode", Mode(42), []string{"mua1", "1"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := ParseSpec(tt.mode, tt.args)
			if !mcerrors.Is(err, mcerrors.KindInvalidSweep) {
				t.Errorf("ParseSpec() error = %v, want InvalidSweepSpec", err)
			}
		})
	}
}

func TestNewAxis_UnknownParameter(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"bogus", "mua7"} {
		_, err := NewAxis(name, CountSpec{Start: 0, Stop: 1, Count: 2}, template(), simulation.Accessor{})
		if !mcerrors.Is(err, mcerrors.KindInvalidSweep) {
			t.Errorf("NewAxis(%q) error = %v, want InvalidSweepSpec", name, err)
		}
	}
}

func TestNewAxis_ValueNotApplicable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		spec Spec
	}{
		{"fractional photon count", CountSpec{Start: 10, Stop: 20, Count: 4}},
		{"negative photon count", ListSpec{Count: 2, Literal: []float64{10, -1}}},
		{"photon count beyond int64", ListSpec{Count: 1, Literal: []float64{1e19}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			base := template()
			_, err := NewAxis("nphot", tt.spec, base, simulation.Accessor{})
			if !mcerrors.Is(err, mcerrors.KindInvalidSweep) {
				t.Errorf("NewAxis() error = %v, want InvalidSweepSpec", err)
			}
			if base.N != 100 {
				t.Errorf("template N = %d, NewAxis must not modify it", base.N)
			}
		})
	}
}

func TestAxis_ValuesImmutable(t *testing.T) {
	t.Parallel()
	a := mustAxis(t, "mua1", ListSpec{Count: 2, Literal: []float64{0.01, 0.02}})
	v := a.Values()
	v[0] = 99
	if got := a.Values()[0]; got != 0.01 {
		t.Errorf("axis value changed through returned slice: %v", got)
	}
	if a.String() != "mua1=[0.01, 0.02]" {
		t.Errorf("String() = %q", a.String())
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float64
		want string
	}{
		{0.01, "0.01"},
		{1.0, "1"},
		{1.2, "1.2"},
		{10, "10"},
		{1000000, "1000000"},
		{0.1 + 0.2, "0.3"},
		{0.0001, "0.0001"},
		{-2.5, "-2.5"},
	}
	for _, tt := range tests {
		tt := tt
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpand_NoAxes(t *testing.T) {
	t.Parallel()
	combos := mustExpand(t, nil)
	if len(combos) != 1 {
		t.Fatalf("len(Expand(nil)) = %d, want 1", len(combos))
	}
	if combos[0].Suffix() != "" {
		t.Errorf("Suffix() = %q, want empty", combos[0].Suffix())
	}

	runs, err := Materialize(template(), combos, "", simulation.Accessor{})
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if diff := cmp.Diff([]string{"one_layer_ROfRho_FluenceOfRhoAndZ"}, names(runs)); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(template(), runs[0].Input); diff != "" {
		t.Errorf("unswept input changed (-want +got):\n%s", diff)
	}
}

func TestExpand_TwoAxesOrder(t *testing.T) {
	t.Parallel()
	axes := []Axis{
		mustAxis(t, "mua1", CountSpec{Start: 0.01, Stop: 0.03, Count: 2}),
		mustAxis(t, "mus1", CountSpec{Start: 1.0, Stop: 1.2, Count: 2}),
	}

	runs, err := Materialize(template(), mustExpand(t, axes), "", simulation.Accessor{})
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	want := []string{
		"_mua1_0.01_mus1_1",
		"_mua1_0.03_mus1_1",
		"_mua1_0.01_mus1_1.2",
		"_mua1_0.03_mus1_1.2",
	}
	if diff := cmp.Diff(want, suffixes(runs)); diff != "" {
		t.Errorf("suffix order mismatch (-want +got):\n%s", diff)
	}

	for i, r := range runs {
		op := r.Input.Tissue.Regions[1].OP
		wantMua := []float64{0.01, 0.03, 0.01, 0.03}[i]
		wantMus := []float64{1, 1, 1.2, 1.2}[i]
		if op.Mua != wantMua || op.Mus != wantMus {
			t.Errorf("run %d: mua=%v mus=%v, want mua=%v mus=%v", i, op.Mua, op.Mus, wantMua, wantMus)
		}
	}
}

func TestExpand_ThreeAxesCount(t *testing.T) {
	t.Parallel()
	axes := []Axis{
		mustAxis(t, "mua1", CountSpec{Start: 0.01, Stop: 0.04, Count: 4}),
		mustAxis(t, "mus1", DeltaSpec{Start: 10, Stop: 20, Delta: 5}),
		mustAxis(t, "nphot", ListSpec{Count: 2, Literal: []float64{10, 20}}),
	}

	combos := mustExpand(t, axes)
	if len(combos) != 4*3*2 {
		t.Fatalf("len(Expand) = %d, want 24", len(combos))
	}

	seen := make(map[string]bool)
	for _, c := range combos {
		if seen[c.Suffix()] {
			t.Errorf("duplicate suffix %q", c.Suffix())
		}
		seen[c.Suffix()] = true
	}

	// Last-declared axis varies slowest.
	if got := combos[0].Suffix(); got != "_mua1_0.01_mus1_10_nphot_10" {
		t.Errorf("first suffix = %q", got)
	}
	if got := combos[len(combos)-1].Suffix(); got != "_mua1_0.04_mus1_20_nphot_20" {
		t.Errorf("last suffix = %q", got)
	}
	if got := combos[12].Suffix(); got != "_mua1_0.01_mus1_10_nphot_20" {
		t.Errorf("combos[12] suffix = %q", got)
	}
}

func TestMaterialize_OutNameOverride(t *testing.T) {
	t.Parallel()
	axes := []Axis{mustAxis(t, "mua1", CountSpec{Start: 0.01, Stop: 0.03, Count: 3})}

	runs, err := Materialize(template(), mustExpand(t, axes), "myResults", simulation.Accessor{})
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	want := []string{"myResults_mua1_0.01", "myResults_mua1_0.02", "myResults_mua1_0.03"}
	if diff := cmp.Diff(want, names(runs)); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestMaterialize_PhotonSweep(t *testing.T) {
	t.Parallel()
	axes := []Axis{mustAxis(t, "nphot", CountSpec{Start: 10, Stop: 20, Count: 2})}

	runs, err := Materialize(template(), mustExpand(t, axes), "", simulation.Accessor{})
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	want := []string{"one_layer_ROfRho_FluenceOfRhoAndZ_nphot_10", "one_layer_ROfRho_FluenceOfRhoAndZ_nphot_20"}
	if diff := cmp.Diff(want, names(runs)); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if runs[1].Input.N != 20 {
		t.Errorf("N = %d, want 20", runs[1].Input.N)
	}
}

func TestMaterialize_LeavesBaseUntouched(t *testing.T) {
	t.Parallel()
	base := template()
	axes := []Axis{mustAxis(t, "mua1", ListSpec{Count: 2, Literal: []float64{0.5, 0.6}})}

	if _, err := Materialize(base, mustExpand(t, axes), "renamed", simulation.Accessor{}); err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if diff := cmp.Diff(template(), base); diff != "" {
		t.Errorf("base template modified (-want +got):\n%s", diff)
	}
}

func TestMaterialize_SetError(t *testing.T) {
	t.Parallel()
	combos := []Combination{{{Name: "nphot", Value: 1.5}}}

	if _, err := Materialize(template(), combos, "", simulation.Accessor{}); err == nil {
		t.Error("Materialize() expected error for fractional photon count")
	}
}

func TestExpand_TooManyRuns(t *testing.T) {
	t.Parallel()
	wide := Axis{name: "mua1", values: make([]float64, maxAxisValues)}
	tests := []struct {
		name string
		axes []Axis
	}{
		{"product over limit", []Axis{wide, wide}},
		{"product would overflow int", []Axis{wide, wide, wide, wide, wide, wide}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			combos, err := Expand(tt.axes)
			if err == nil {
				t.Fatalf("Expand() = %d combinations, want error", len(combos))
			}
			if combos != nil {
				t.Error("Expand() allocated combinations on error")
			}
		})
	}

	combos, err := Expand([]Axis{{name: "mua1", values: make([]float64, 10)}, {name: "mus1", values: make([]float64, MaxRuns/10)}})
	if err != nil {
		t.Fatalf("Expand() at the limit error = %v", err)
	}
	if len(combos) != MaxRuns {
		t.Errorf("len(Expand) = %d, want %d", len(combos), MaxRuns)
	}
}

func TestExpand_Deterministic(t *testing.T) {
	t.Parallel()
	build := func() []ExpandedRun {
		axes := []Axis{
			mustAxis(t, "mua1", DeltaSpec{Start: 0.01, Stop: 0.03, Delta: 0.01}),
			mustAxis(t, "g1", ListSpec{Count: 2, Literal: []float64{0.8, 0.9}}),
		}
		runs, err := Materialize(template(), mustExpand(t, axes), "", simulation.Accessor{})
		if err != nil {
			t.Fatalf("Materialize() error = %v", err)
		}
		return runs
	}

	if diff := cmp.Diff(build(), build()); diff != "" {
		t.Errorf("expansion not deterministic (-first +second):\n%s", diff)
	}
}

func TestSingles(t *testing.T) {
	t.Parallel()
	a := template()
	b := template()
	b.OutputName = "other"

	runs := Singles([]*simulation.Input{a, b})
	if diff := cmp.Diff([]string{"one_layer_ROfRho_FluenceOfRhoAndZ", "other"}, names(runs)); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	runs[0].Input.N = 1
	if a.N != 100 {
		t.Error("Singles must copy inputs")
	}
}
