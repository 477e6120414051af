// Package errors defines the failure kinds refscope distinguishes.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code identifies a failure mode.
type Code string

const (
	// NotFound indicates no symbol or candidate could be resolved.
	NotFound Code = "NOT_FOUND"
	// InvalidInput indicates a malformed request or out-of-range position.
	InvalidInput Code = "INVALID_INPUT"
	// PartialEnrichmentFailure indicates a secondary candidate field could not be computed.
	PartialEnrichmentFailure Code = "PARTIAL_ENRICHMENT_FAILURE"
	// HostQueryFailure indicates an underlying host search failed.
	HostQueryFailure Code = "HOST_QUERY_FAILURE"
	// Internal indicates an unexpected failure.
	Internal Code = "INTERNAL_ERROR"
)

// Error carries a failure code, the operation that failed and an optional cause.
type Error struct {
	Code    Code   `json:"code"`
	Op      string `json:"op,omitempty"`
	Message string `json:"message"`
	cause   error
}

// New creates an Error without a cause.
func New(code Code, op, message string) *Error {
	return &Error{Code: code, Op: op, Message: message}
}

// Wrap creates an Error around cause. It returns nil when cause is nil.
func Wrap(code Code, op string, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Message: cause.Error(), cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := fmt.Sprintf("[%s]", e.Code)
	if e.Op != "" {
		prefix += " " + e.Op
	}
	if e.cause != nil && e.cause.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf returns the code of the first *Error in err's chain, or Internal.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}
