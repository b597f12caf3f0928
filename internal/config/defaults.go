package config

// Default setting values.
const (
	DefaultFileName   = "mc.yaml"
	DefaultLogLevel   = "warn"
	DefaultMaxWorkers = 256
	DefaultColor      = "auto"
)

// Bounds for MaxWorkers.
const (
	MinWorkers = 1
	MaxWorkers = 256
)

// Defaults returns settings with every default applied.
func Defaults() *Settings {
	s := &Settings{}
	applyDefaults(s)
	return s
}

// applyDefaults fills in default values for unset fields.
func applyDefaults(s *Settings) {
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	if s.MaxWorkers == 0 {
		s.MaxWorkers = DefaultMaxWorkers
	}
	if s.Color == "" {
		s.Color = DefaultColor
	}
}
