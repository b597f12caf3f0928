package simulation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// regionParamPattern matches per-region optical property names such as mua1 or g2.
var regionParamPattern = regexp.MustCompile(`^(mua|mus|g|n)(\d+)$`)

// ParamPhotonCount is the sweep name of the launched photon count.
const ParamPhotonCount = "nphot"

// SweepParameter documents one family of sweepable names for help output.
type SweepParameter struct {
	Name        string
	Description string
}

// SweepParameters lists the sweepable parameter families.
var SweepParameters = []SweepParameter{
	{"muai", "absorption coefficient for tissue layer i"},
	{"musi", "scattering coefficient for tissue layer i"},
	{"ni", "refractive index for tissue layer i"},
	{"gi", "anisotropy for tissue layer i"},
	{ParamPhotonCount, "number of photons to launch from the source"},
}

// Accessor resolves sweep parameter names against an Input.
// Names are case-insensitive; region indices refer to Tissue.Regions.
type Accessor struct{}

// Get returns the current value of the named parameter.
func (Accessor) Get(in *Input, name string) (float64, error) {
	name = strings.ToLower(name)
	if name == ParamPhotonCount {
		return float64(in.N), nil
	}
	op, err := regionOP(in, name)
	if err != nil {
		return 0, err
	}
	return *op, nil
}

// Set assigns v to the named parameter.
func (Accessor) Set(in *Input, name string, v float64) error {
	name = strings.ToLower(name)
	if name == ParamPhotonCount {
		if v < 0 || v != math.Trunc(v) {
			return fmt.Errorf("%s must be a non-negative integer, got %v", ParamPhotonCount, v)
		}
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if v >= math.MaxInt64 {
			return fmt.Errorf("%s %v is too large", ParamPhotonCount, v)
		}
		in.N = int64(v)
		return nil
	}
	op, err := regionOP(in, name)
	if err != nil {
		return err
	}
	*op = v
	return nil
}

// regionOP returns a pointer to the optical property field named by name.
func regionOP(in *Input, name string) (*float64, error) {
	m := regionParamPattern.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("unknown sweep parameter %q", name)
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, fmt.Errorf("invalid region index in %q: %w", name, err)
	}
	if idx >= len(in.Tissue.Regions) {
		return nil, fmt.Errorf("sweep parameter %q refers to region %d but tissue has %d regions",
			name, idx, len(in.Tissue.Regions))
	}
	op := &in.Tissue.Regions[idx].OP
	switch m[1] {
	case "mua":
		return &op.Mua, nil
	case "mus":
		return &op.Mus, nil
	case "g":
		return &op.G, nil
	default:
		return &op.N, nil
	}
}
