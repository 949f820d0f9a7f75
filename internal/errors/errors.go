// Package errors provides structured errors for lsm components. Each error
// carries a code that callers branch on, so front ends can tell a vanished
// process apart from a permission problem without parsing messages.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrCodeUnavailable = "UNAVAILABLE"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodePermission  = "PERMISSION_DENIED"
	ErrCodeTimeout     = "TIMEOUT"
	ErrCodeConfig      = "CONFIG"
	ErrCodeExec        = "EXEC"
)

// Sentinels for use with errors.Is. Any *Error with the same code matches.
var (
	ErrUnavailable = &Error{Code: ErrCodeUnavailable, Message: "subsystem unavailable"}
	ErrNotFound    = &Error{Code: ErrCodeNotFound, Message: "not found"}
	ErrPermission  = &Error{Code: ErrCodePermission, Message: "permission denied"}
	ErrTimeout     = &Error{Code: ErrCodeTimeout, Message: "timed out"}
)

// Error represents a structured error with code, message, suggestion, and optional cause.
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapWithSuggestion wraps an existing error with a code, message, and suggestion.
func WrapWithSuggestion(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error renders the message, then the cause, then the suggestion on one line.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf(" (%s)", e.Suggestion))
	}
	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var lsmErr *Error
	if errors.As(err, &lsmErr) {
		return lsmErr.Code == code
	}
	return false
}

// Code returns the code of the first structured error in the chain, or "".
func Code(err error) string {
	var lsmErr *Error
	if errors.As(err, &lsmErr) {
		return lsmErr.Code
	}
	return ""
}

// ExitError carries a process exit code up to main without printing anything.
type ExitError struct {
	Code int
}

func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode returns the code of an ExitError anywhere in the chain.
func GetExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
