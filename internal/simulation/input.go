// Package simulation defines the simulation input value object consumed by the
// photon-transport engine, its YAML persistence, and the accessor that maps
// sweep parameter names onto input fields.
package simulation

// Input is one concrete simulation configuration.
//
// The batch core reads only OutputName and Options.Databases. Everything else
// is payload that is copied verbatim unless a sweep axis targets it.
type Input struct {
	OutputName string           `yaml:"outputName" json:"outputName"`
	N          int64            `yaml:"n" json:"n"`
	Options    Options          `yaml:"options" json:"options"`
	Source     map[string]any   `yaml:"source,omitempty" json:"source,omitempty"`
	Tissue     Tissue           `yaml:"tissue" json:"tissue"`
	Detectors  []map[string]any `yaml:"detectors,omitempty" json:"detectors,omitempty"`
}

// Options holds engine options.
type Options struct {
	Seed                  int      `yaml:"seed" json:"seed"`
	RandomNumberGenerator string   `yaml:"randomNumberGenerator,omitempty" json:"randomNumberGenerator,omitempty"`
	AbsorptionWeighting   string   `yaml:"absorptionWeighting,omitempty" json:"absorptionWeighting,omitempty"`
	PhaseFunction         string   `yaml:"phaseFunction,omitempty" json:"phaseFunction,omitempty"`
	Databases             []string `yaml:"databases,omitempty" json:"databases,omitempty"`
	TrackStatistics       bool     `yaml:"trackStatistics,omitempty" json:"trackStatistics,omitempty"`
	SimulationIndex       int      `yaml:"simulationIndex,omitempty" json:"simulationIndex,omitempty"`
}

// Tissue is an ordered list of regions. Region 0 is the medium above the
// tissue, so layer k of a layered tissue is Regions[k].
type Tissue struct {
	Type    string   `yaml:"type" json:"type"`
	Regions []Region `yaml:"regions" json:"regions"`
}

// Region is one tissue region with its optical properties.
type Region struct {
	Type   string            `yaml:"type" json:"type"`
	ZRange []float64         `yaml:"zRange,omitempty" json:"zRange,omitempty"`
	OP     OpticalProperties `yaml:"op" json:"op"`
}

// OpticalProperties are absorption (mua, 1/mm), scattering (mus, 1/mm),
// anisotropy (g) and refractive index (n).
type OpticalProperties struct {
	Mua float64 `yaml:"mua" json:"mua"`
	Mus float64 `yaml:"mus" json:"mus"`
	G   float64 `yaml:"g" json:"g"`
	N   float64 `yaml:"n" json:"n"`
}

// Known database names an engine can write.
const (
	DatabaseDiffuseReflectance      = "DiffuseReflectance"
	DatabaseDiffuseTransmittance    = "DiffuseTransmittance"
	DatabaseSpecularReflectance     = "SpecularReflectance"
	DatabasePMCDiffuseReflectance   = "pMCDiffuseReflectance"
	DatabasePMCDiffuseTransmittance = "pMCDiffuseTransmittance"
)

// KnownDatabases lists every database name accepted in Options.Databases.
var KnownDatabases = []string{
	DatabaseDiffuseReflectance,
	DatabaseDiffuseTransmittance,
	DatabaseSpecularReflectance,
	DatabasePMCDiffuseReflectance,
	DatabasePMCDiffuseTransmittance,
}

// WritesDatabase reports whether running in writes a persistent database.
// Such runs are not safe to execute concurrently.
func (in *Input) WritesDatabase() bool {
	return len(in.Options.Databases) > 0
}

// Clone returns a deep copy of in.
func (in *Input) Clone() *Input {
	if in == nil {
		return nil
	}
	out := *in
	out.Options.Databases = append([]string(nil), in.Options.Databases...)
	out.Source = cloneMap(in.Source)
	if in.Detectors != nil {
		out.Detectors = make([]map[string]any, len(in.Detectors))
		for i, d := range in.Detectors {
			out.Detectors[i] = cloneMap(d)
		}
	}
	if in.Tissue.Regions != nil {
		out.Tissue.Regions = make([]Region, len(in.Tissue.Regions))
		for i, r := range in.Tissue.Regions {
			r.ZRange = append([]float64(nil), r.ZRange...)
			out.Tissue.Regions[i] = r
		}
	}
	return &out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
