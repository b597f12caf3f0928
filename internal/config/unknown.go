package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// detectUnknownFields compares the raw document with the known Settings keys.
func detectUnknownFields(data []byte) []string {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// Parse already succeeded once, so this means a non-mapping root.
		return []string{"settings root is not a mapping (ignored)"}
	}

	known := yamlFields(reflect.TypeOf(Settings{}))
	var warnings []string
	for key := range raw {
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q in %s (ignored)", key, DefaultFileName))
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
