// Package config provides loading and validation of mc settings from mc.yaml
// and the environment.
package config

// Settings are the process-wide knobs of the mc CLI.
type Settings struct {
	// Engine is the command line of the photon-transport engine. The input
	// file path and run directory are appended. Empty selects the record-only
	// engine.
	Engine []string `yaml:"engine,omitempty"`

	// LogLevel is the slog level name (trace, debug, info, warn, error).
	LogLevel string `yaml:"logLevel,omitempty"`

	// Ledger is the path of the SQLite batch ledger. Empty disables it.
	Ledger string `yaml:"ledger,omitempty"`

	// MaxWorkers caps the cpucount directive.
	MaxWorkers int `yaml:"maxWorkers,omitempty"`

	// Color is "auto", "always" or "never".
	Color string `yaml:"color,omitempty"`

	// Quiet suppresses progress lines and notices; errors still print.
	Quiet bool `yaml:"quiet,omitempty"`
}

// Environment variables that override mc.yaml.
const (
	EnvEngine     = "MC_ENGINE"
	EnvLogLevel   = "MC_LOG_LEVEL"
	EnvLedger     = "MC_LEDGER"
	EnvMaxWorkers = "MC_MAX_WORKERS"
	EnvColor      = "MC_COLOR"
	EnvQuiet      = "MC_QUIET"
)
