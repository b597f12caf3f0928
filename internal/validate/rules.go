package validate

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/virtualphotonics/mcbatch/internal/schema"
	"github.com/virtualphotonics/mcbatch/internal/simulation"
)

// Rule names reported in Result.Rule.
const (
	RuleSchema            = "Schema"
	RuleOutputName        = "OutputName"
	RulePhotonCount       = "PhotonCount"
	RuleOpticalProperties = "OpticalProperties"
	RuleDatabases         = "Databases"
)

// Rule is one named check.
type Rule struct {
	Name  string
	Check func(in *simulation.Input) error
}

// Rules is an ordered list of checks; the first failing rule wins.
type Rules []Rule

// Validate implements Validator.
func (rs Rules) Validate(in *simulation.Input) Result {
	for _, r := range rs {
		if err := r.Check(in); err != nil {
			return Invalid(r.Name, err.Error())
		}
	}
	return Valid()
}

// Default returns the standard rule set: the embedded JSON schema followed by
// semantic checks on the fields the schema cannot express.
func Default() Rules {
	return Rules{
		{RuleSchema, checkSchema},
		{RuleOutputName, checkOutputName},
		{RulePhotonCount, checkPhotonCount},
		{RuleOpticalProperties, checkOpticalProperties},
		{RuleDatabases, checkDatabases},
	}
}

func checkSchema(in *simulation.Input) error {
	return schema.ValidateInput(in)
}

func checkOutputName(in *simulation.Input) error {
	name := in.OutputName
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("output name is required")
	case name == "." || name == "..":
		return fmt.Errorf("output name %q is not a valid directory name", name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, filepath.Separator):
		return fmt.Errorf("output name %q must not contain path separators", name)
	}
	return nil
}

func checkPhotonCount(in *simulation.Input) error {
	if in.N < 1 {
		return fmt.Errorf("number of photons must be at least 1, got %d", in.N)
	}
	return nil
}

func checkOpticalProperties(in *simulation.Input) error {
	for i, r := range in.Tissue.Regions {
		op := r.OP
		switch {
		case op.Mua < 0:
			return fmt.Errorf("region %d: mua must be non-negative, got %v", i, op.Mua)
		case op.Mus < 0:
			return fmt.Errorf("region %d: mus must be non-negative, got %v", i, op.Mus)
		case op.G < -1 || op.G > 1:
			return fmt.Errorf("region %d: g must be in [-1, 1], got %v", i, op.G)
		case op.N <= 0:
			return fmt.Errorf("region %d: n must be positive, got %v", i, op.N)
		}
	}
	return nil
}

func checkDatabases(in *simulation.Input) error {
	seen := make(map[string]bool, len(in.Options.Databases))
	for _, db := range in.Options.Databases {
		if !slices.Contains(simulation.KnownDatabases, db) {
			return fmt.Errorf("unknown database %q (known: %s)", db, strings.Join(simulation.KnownDatabases, ", "))
		}
		if seen[db] {
			return fmt.Errorf("database %q listed more than once", db)
		}
		seen[db] = true
	}
	return nil
}
