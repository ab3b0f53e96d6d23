// Package errors provides structured error types for the Patchbay application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes are stable lowercase identifiers; the HTTP layer maps them to
// status codes and the CLI to user messages:
//   - not_found: a document or resource does not exist
//   - invalid_*: input or document validation failures
//   - store_unavailable: a persistence backend failed
//   - render_failed: export/rendering failed
//   - config_invalid: configuration could not be loaded
//   - internal: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.CodeInvalidInput, "invalid node type: %s", typ)
//	if errors.Is(err, errors.CodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.CodeStoreUnavailable, origErr, "put document %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Resource not found
	CodeNotFound Code = "not_found"

	// Input validation errors
	CodeInvalidInput    Code = "invalid_input"
	CodeInvalidDocument Code = "invalid_document"

	// Backend errors
	CodeStoreUnavailable Code = "store_unavailable"
	CodeRenderFailed     Code = "render_failed"

	// Configuration errors
	CodeConfigInvalid Code = "config_invalid"

	// Internal errors
	CodeInternal Code = "internal"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
