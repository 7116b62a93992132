// Package errors provides structured error types for staffline.
//
// The score core distinguishes two outcomes when something is wrong:
//   - Invariant violations (bad voice id, malformed tuplet, a connective that
//     spans too far, ...) are returned immediately as an [*Error] with a
//     machine-readable [Code]. Callers are not expected to retry.
//   - "Nothing to draw or play" conditions are not errors at all; the
//     operation simply produces an empty result.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Construction input failures
//   - CONNECTIVE_*, NO_*, MALFORMED_*: Score graph invariant violations
//   - BEAM_*, NAVIGATION_*: Engine diagnostics
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidVoice, "voice %d out of range", v)
//	if errors.Is(err, errors.ErrCodeInvalidVoice) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidScoreFile, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Construction input errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidVoice     Code = "INVALID_VOICE"
	ErrCodeInvalidNote      Code = "INVALID_NOTE"
	ErrCodeInvalidDuration  Code = "INVALID_DURATION"
	ErrCodeInvalidTuplet    Code = "INVALID_TUPLET"
	ErrCodeInvalidSignature Code = "INVALID_SIGNATURE"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidScoreFile Code = "INVALID_SCORE_FILE"
	ErrCodeMeasureOverflow  Code = "MEASURE_OVERFLOW"

	// Score graph invariant violations
	ErrCodeConnectiveSpan    Code = "CONNECTIVE_SPAN"
	ErrCodeNoExtensionAnchor Code = "NO_EXTENSION_ANCHOR"
	ErrCodeMalformedBeam     Code = "MALFORMED_BEAM"

	// Engine diagnostics
	ErrCodeBeamDivergence Code = "BEAM_DIVERGENCE"
	ErrCodeNavigationLoop Code = "NAVIGATION_LOOP"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
