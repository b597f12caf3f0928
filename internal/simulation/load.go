package simulation

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileExt is the extension used for input files written by mc.
const FileExt = ".yaml"

// Load reads and parses an input template. JSON templates are accepted since
// JSON is a subset of YAML. Unknown top-level keys are returned as warnings.
func Load(path string) (*Input, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return Parse(data)
}

// Parse decodes an input template from data.
func Parse(data []byte) (*Input, []string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, fmt.Errorf("input file is empty")
	}

	var in Input
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, nil, fmt.Errorf("failed to parse input file: %w", err)
	}

	return &in, detectUnknownFields(data), nil
}

// Marshal encodes in as YAML.
func Marshal(in *Input) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(in); err != nil {
		return nil, fmt.Errorf("failed to encode input: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode input: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes in to path as YAML.
func Save(path string, in *Input) error {
	data, err := Marshal(in)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write input file: %w", err)
	}
	return nil
}

// detectUnknownFields compares the raw top-level keys with the Input fields.
// Called after a successful decode, so a parse failure here is unexpected.
func detectUnknownFields(data []byte) []string {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return []string{"internal: failed to re-parse input for unknown field detection"}
	}

	known := yamlFields(reflect.TypeOf(Input{}))
	var warnings []string
	for key := range raw {
		if key == "$schema" {
			continue
		}
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
		}
	}
	sort.Strings(warnings)
	return warnings
}

// yamlFields returns the set of YAML field names declared on a struct type.
func yamlFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			fields[name] = true
		}
	}
	return fields
}
