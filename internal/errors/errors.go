// Package errors provides structured error types and exit codes for mc.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Exit codes returned by the mc CLI.
const (
	ExitSuccess         = 0 // Success
	ExitRuntimeError    = 1 // Template missing or unreadable, bad settings, run failed
	ExitValidationError = 2 // Input failed validation
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindInvalidSweep
	KindMissingTemplate
	KindValidation
	KindRun
	KindConfig
)

// String returns the taxonomy name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidSweep:
		return "InvalidSweepSpec"
	case KindMissingTemplate:
		return "MissingTemplate"
	case KindValidation:
		return "ValidationFailure"
	case KindRun:
		return "RunFailure"
	case KindConfig:
		return "ConfigError"
	default:
		return "RuntimeError"
	}
}

// Error is the base error type for mc.
type Error struct {
	Kind    ErrorKind
	Message string
	Run     string // Output name of the run if applicable
	Rule    string // Validation rule if applicable
	Cause   error  // Underlying error
}

func (e *Error) Error() string {
	switch {
	case e.Run != "" && e.Rule != "":
		return fmt.Sprintf("[%s] %s: %s", e.Run, e.Rule, e.Message)
	case e.Run != "":
		return fmt.Sprintf("[%s] %s", e.Run, e.Message)
	case e.Rule != "":
		return fmt.Sprintf("%s: %s", e.Rule, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindValidation:
		return ExitValidationError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *Error {
	return &Error{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...any) *Error {
	return New(fmt.Sprintf(format, args...))
}

// InvalidSweep creates an error for a malformed sweep directive.
func InvalidSweep(format string, args ...any) *Error {
	return &Error{
		Kind:    KindInvalidSweep,
		Message: fmt.Sprintf(format, args...),
	}
}

// MissingTemplate creates an error for an input template that cannot be read.
func MissingTemplate(path string, cause error) *Error {
	return &Error{
		Kind:    KindMissingTemplate,
		Message: fmt.Sprintf("cannot read input template %s: %v", path, cause),
		Cause:   cause,
	}
}

// Validation creates an error for a run whose input failed the given rule.
func Validation(run, rule, remarks string) *Error {
	return &Error{
		Kind:    KindValidation,
		Run:     run,
		Rule:    rule,
		Message: remarks,
	}
}

// RunFailure creates an error for a dispatched run that did not succeed.
func RunFailure(run, message string, cause error) *Error {
	return &Error{
		Kind:    KindRun,
		Run:     run,
		Message: message,
		Cause:   cause,
	}
}

// Config creates a new configuration error.
func Config(message string) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...any) *Error {
	return Config(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *Error {
	return &Error{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// Is reports whether err carries an *Error of the given kind anywhere in its chain.
func Is(err error, kind ErrorKind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetExitCode returns the exit code for an error.
// Joined errors report the most severe code of their members.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		code := ExitSuccess
		for _, e := range joined.Unwrap() {
			code = max(code, GetExitCode(e))
		}
		return code
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.ExitCode()
	}
	return ExitRuntimeError
}
