// Package errors provides structured error types for hybridnet.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the engine
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (bad Newick, disjoint taxa)
//   - NOT_FOUND_*: Resource not found
//   - CANCELLED, BUDGET_EXCEEDED: the search stopped without a result
//   - INTERNAL_*: Unexpected internal errors
//
// A search that was cancelled is not a failure of the input. Callers tell the
// two apart by code:
//
//	res, err := engine.Compute(ctx, t1, t2)
//	switch {
//	case errors.Is(err, errors.ErrCodeCancelled):
//	    // user interrupt or deadline
//	case errors.Is(err, errors.ErrCodeInvalidInput):
//	    // bad trees
//	}
//
// Cancellation errors wrap the context error, so the standard library's
// errors.Is(err, context.Canceled) holds as well.
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidNewick Code = "INVALID_NEWICK"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeDisjointTaxa  Code = "DISJOINT_TAXA"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeResultNotFound Code = "RESULT_NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Search outcome errors
	ErrCodeCancelled      Code = "CANCELLED"
	ErrCodeBudgetExceeded Code = "BUDGET_EXCEEDED"

	// Backend errors
	ErrCodeStorage Code = "STORAGE_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// Is reports whether any *Error in the chain of err carries code.
func Is(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode returns the code of the outermost *Error in the chain of err, or
// "" when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error without its code,
// or err.Error() for other errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsInput reports whether err was caused by bad input rather than by the
// search or its environment.
func IsInput(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidNewick, ErrCodeInvalidFormat, ErrCodeDisjointTaxa:
		return true
	}
	return false
}

// BudgetExceededError reports that no network exists within an explicit
// reticulation budget.
type BudgetExceededError struct {
	Budget int
}

// Error implements the error interface.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("no network with at most %d reticulations", e.Budget)
}

// Code returns the error code for this error type.
func (e *BudgetExceededError) Code() Code {
	return ErrCodeBudgetExceeded
}
