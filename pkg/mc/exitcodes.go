// Package mc provides public constants for external tools driving the mc CLI,
// such as batch schedulers that need to tell a bad template from a failed run.
package mc

// Exit codes returned by the mc CLI.
// These constants allow external tools to check exit codes symbolically
// rather than using magic numbers.
const (
	// ExitSuccess indicates every run in the batch completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates the input template was missing or unreadable,
	// the settings or engine command were invalid, or at least one
	// dispatched run failed.
	ExitFailure = 1

	// ExitValidationError indicates that an input failed validation and
	// no run was started.
	ExitValidationError = 2
)
