package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	mcerrors "github.com/virtualphotonics/mcbatch/internal/errors"
)

// Parse decodes mc.yaml content. Empty content yields zero settings.
func Parse(data []byte) (*Settings, error) {
	var s Settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &s, nil
}

// LoadFile reads path and returns its settings along with unknown-field
// warnings. A missing file is not an error.
func LoadFile(path string) (*Settings, []string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Settings{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return s, detectUnknownFields(data), nil
}

// Load reads dir/mc.yaml, applies environment overrides from getenv, fills
// defaults and validates. Invalid values are reported as warnings and reset
// to their defaults; only an unreadable or malformed file is an error.
func Load(dir string, getenv func(string) string) (*Settings, []string, error) {
	path := filepath.Join(dir, DefaultFileName)
	s, warnings, err := LoadFile(path)
	if err != nil {
		return nil, warnings, mcerrors.Configf("%s: %v", path, err)
	}

	warnings = append(warnings, applyEnv(s, getenv)...)
	applyDefaults(s)
	warnings = append(warnings, Validate(s)...)
	return s, warnings, nil
}

// applyEnv overrides fields from the environment.
func applyEnv(s *Settings, getenv func(string) string) []string {
	if getenv == nil {
		return nil
	}
	var warnings []string

	if v := strings.TrimSpace(getenv(EnvEngine)); v != "" {
		s.Engine = strings.Fields(v)
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		s.LogLevel = v
	}
	if v, ok := lookup(getenv, EnvLedger); ok {
		s.Ledger = v
	}
	if v := strings.TrimSpace(getenv(EnvMaxWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s=%q is not an integer (ignored)", EnvMaxWorkers, v))
		} else {
			s.MaxWorkers = n
		}
	}
	if v := strings.TrimSpace(getenv(EnvColor)); v != "" {
		s.Color = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvQuiet)); v != "" {
		q, err := strconv.ParseBool(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s=%q is not a boolean (ignored)", EnvQuiet, v))
		} else {
			s.Quiet = q
		}
	}
	return warnings
}

// lookup distinguishes an unset variable from one set to "-", which
// explicitly clears a value configured in mc.yaml.
func lookup(getenv func(string) string, key string) (string, bool) {
	v := strings.TrimSpace(getenv(key))
	switch v {
	case "":
		return "", false
	case "-":
		return "", true
	}
	return v, true
}
