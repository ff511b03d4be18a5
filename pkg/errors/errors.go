// Package errors provides structured error types for structuralign.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API, and tests
//   - Machine-readable error codes mapped to the process exit codes of
//     spec.md §7
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Fatal codes (abort the pipeline without writing output, per spec.md §7):
//   - INVALID_INPUT: unknown element kind, NaN/Inf vertex coordinate (exit 10)
//   - NO_AXES_FOUND: axis discovery yielded nothing even after fallback (exit 20)
//   - VALIDATION_FAILED: a post-alignment invariant was violated — implies
//     an internal bug (exit 30)
//
// Recoverable conditions are never returned as errors — they accumulate in
// the pipeline's report as Warnings (see pkg/report).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown kind: %s", kind)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    os.Exit(errors.ExitCode(err))
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes, one per spec.md §7 taxonomy entry that is fatal.
const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeNoAxesFound      Code = "NO_AXES_FOUND"
	ErrCodeValidationFailed Code = "VALIDATION_FAILED"
	ErrCodeInternal         Code = "INTERNAL_ERROR"
)

// exitCodes maps fatal codes to the process exit codes spec.md §7 assigns.
var exitCodes = map[Code]int{
	ErrCodeInvalidInput:     10,
	ErrCodeNoAxesFound:      20,
	ErrCodeValidationFailed: 30,
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err has the given error code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ExitCode returns the process exit code for a fatal error, or 1 if the
// error carries no recognized code.
func ExitCode(err error) int {
	code := GetCode(err)
	if ec, ok := exitCodes[code]; ok {
		return ec
	}
	return 1
}
