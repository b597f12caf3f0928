package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validColors = map[string]bool{
	"auto":   true,
	"always": true,
	"never":  true,
}

// Validate checks s and resets invalid fields to their defaults.
// It returns one warning per reset field.
func Validate(s *Settings) []string {
	var warnings []string

	if !validLogLevels[strings.ToLower(s.LogLevel)] {
		warnings = append(warnings, fmt.Sprintf("logLevel: unknown level %q, using %q", s.LogLevel, DefaultLogLevel))
		s.LogLevel = DefaultLogLevel
	}

	if s.MaxWorkers < MinWorkers || s.MaxWorkers > MaxWorkers {
		warnings = append(warnings, fmt.Sprintf("maxWorkers: %d out of range [%d, %d], using %d",
			s.MaxWorkers, MinWorkers, MaxWorkers, DefaultMaxWorkers))
		s.MaxWorkers = DefaultMaxWorkers
	}

	if !validColors[s.Color] {
		warnings = append(warnings, fmt.Sprintf("color: must be auto, always or never, got %q, using %q", s.Color, DefaultColor))
		s.Color = DefaultColor
	}

	return warnings
}
