package errors

import (
	"errors"
	"fmt"
)

// Code represents an error code for categorizing errors
type Code string

const (
	// CodeUnknown indicates an unknown error
	CodeUnknown Code = "unknown"

	// CodeInvalidArgument indicates the caller passed something unusable
	CodeInvalidArgument Code = "invalid_argument"

	// CodeNotFound indicates a requested record was not found
	CodeNotFound Code = "not_found"

	// CodeContent indicates a content-authoring defect: malformed expression,
	// unbound variable, invalid power level. Aborts only the offending action.
	CodeContent Code = "content"

	// CodeResource indicates the actor lacks a resource (MIND) to act.
	// Expected at runtime; surfaced as a no-op outcome.
	CodeResource Code = "resource"

	// CodeStateInvariant indicates inconsistent engine bookkeeping.
	// Programmer error, not recoverable at runtime.
	CodeStateInvariant Code = "state_invariant"

	// CodeInternal indicates internal system error
	CodeInternal Code = "internal"
)

// Error represents an application error with code and metadata
type Error struct {
	// Code is the error code
	Code Code

	// Message is the error message
	Message string

	// Cause is the wrapped error
	Cause error

	// Meta contains additional context
	Meta map[string]any
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta adds metadata to the error (builder pattern)
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates a new error with the given code and message
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new error with formatted message
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	// If it's already our error type, preserve the code
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return &Error{
			Code:    engineErr.Code,
			Message: message,
			Cause:   err,
			Meta:    copyMeta(engineErr.Meta),
		}
	}

	return &Error{
		Code:    CodeUnknown,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific code
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}

	wrapped := Wrap(err, message)
	wrapped.Code = code
	return wrapped
}

// Helper functions for common error types

// NotFoundf creates a formatted not found error
func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

// InvalidArgumentf creates a formatted invalid argument error
func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

// Contentf creates a formatted content error
func Contentf(format string, args ...any) *Error {
	return Newf(CodeContent, format, args...)
}

// MalformedExpression reports an expression that failed to parse or evaluate
func MalformedExpression(expr string, cause error) *Error {
	return WrapWithCode(cause, CodeContent, fmt.Sprintf("malformed expression %q", expr)).
		WithMeta("expression", expr)
}

// UnboundVariable reports a formula variable missing from the bindings
func UnboundVariable(name string) *Error {
	return Newf(CodeContent, "unbound variable [%s]", name).
		WithMeta("variable", name)
}

// InvalidPowerLevel reports a power level outside the mind cost table
func InvalidPowerLevel(level, levels int) *Error {
	return Newf(CodeContent, "invalid power level %d (action has %d levels)", level, levels).
		WithMeta("level", level).
		WithMeta("levels", levels)
}

// InsufficientResource reports that an actor cannot pay for an action
func InsufficientResource(resource string, have, need int) *Error {
	return Newf(CodeResource, "insufficient %s: have %d, need %d", resource, have, need).
		WithMeta("resource", resource).
		WithMeta("have", have).
		WithMeta("need", need)
}

// StateInvariantf creates a formatted state invariant violation
func StateInvariantf(format string, args ...any) *Error {
	return Newf(CodeStateInvariant, format, args...)
}

// Internalf creates a formatted internal error
func Internalf(format string, args ...any) *Error {
	return Newf(CodeInternal, format, args...)
}

// Error checking functions

// Is checks if the error is of a specific code
func Is(err error, code Code) bool {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return Is(err, CodeNotFound)
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return Is(err, CodeInvalidArgument)
}

// IsContent checks if the error is a content-authoring error
func IsContent(err error) bool {
	return Is(err, CodeContent)
}

// IsResource checks if the error is an insufficient resource error
func IsResource(err error) bool {
	return Is(err, CodeResource)
}

// IsStateInvariant checks if the error is a bookkeeping violation
func IsStateInvariant(err error) bool {
	return Is(err, CodeStateInvariant)
}

// GetCode returns the error code
func GetCode(err error) Code {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Code
	}
	return CodeUnknown
}

// GetMeta returns the error metadata
func GetMeta(err error) map[string]any {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Meta
	}
	return nil
}

// copyMeta creates a copy of the metadata map
func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}

	copied := make(map[string]any, len(meta))
	for k, v := range meta {
		copied[k] = v
	}
	return copied
}
