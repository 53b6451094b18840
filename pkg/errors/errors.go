// Package errors provides structured error types for arbor.
//
// Every failure that crosses a package boundary carries a [Code] so callers
// (the CLI, the HTTP server, the interactive viewer) can react to the class
// of failure without string matching.
//
// # Error Codes
//
// Codes group by prefix:
//   - INVALID_*: malformed input (tree documents, node ids, formats)
//   - DEGENERATE_*: geometry that cannot produce a transform
//   - NOT_FOUND / FILE_NOT_FOUND: missing resources
//   - INTERNAL_*: unexpected failures
//
// Structural no-ops (toggling a leaf, expanding an already visible path) are
// not errors and never produce a value from this package.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidNodeReference, "toggle: unknown node %d", id)
//	if errors.Is(err, errors.ErrCodeInvalidNodeReference) {
//	    // keep the current state
//	}
//
//	err = errors.Wrap(errors.ErrCodeInvalidFormat, cause, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput         Code = "INVALID_INPUT"
	ErrCodeInvalidFormat        Code = "INVALID_FORMAT"
	ErrCodeInvalidTree          Code = "INVALID_TREE"
	ErrCodeInvalidNodeReference Code = "INVALID_NODE_REFERENCE"
	ErrCodeInvalidCommand       Code = "INVALID_COMMAND"
	ErrCodeInvalidConfig        Code = "INVALID_CONFIG"

	// Geometry errors
	ErrCodeDegenerateGeometry Code = "DEGENERATE_GEOMETRY"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
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

// NodeRefError reports an operation addressed to a node id that the tree
// does not contain. It satisfies errors.Is for ErrCodeInvalidNodeReference
// through [NodeRefError.Unwrap].
type NodeRefError struct {
	Op string // operation that received the id
	ID uint64 // offending id
}

// Error implements the error interface.
func (e *NodeRefError) Error() string {
	return fmt.Sprintf("%s: unknown node %d", e.Op, e.ID)
}

// Unwrap exposes the coded form so Is(err, ErrCodeInvalidNodeReference) holds.
func (e *NodeRefError) Unwrap() error {
	return New(ErrCodeInvalidNodeReference, "%s: unknown node %d", e.Op, e.ID)
}

// Code returns the error code for this error type.
func (e *NodeRefError) Code() Code {
	return ErrCodeInvalidNodeReference
}
