// Package lifeerrors defines the application error types used across the
// engine and its CLI.
package lifeerrors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown           = "UNKNOWN_ERROR"
	CodeConfigError       = "CONFIG_ERROR"
	CodeIOError           = "IO_ERROR"
	CodeAllocError        = "ALLOC_ERROR"
	CodeInternalInvariant = "INTERNAL_INVARIANT"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target by code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates a new AppError with a formatted message.
func Newf(code string, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Common error instances, used as comparison targets for errors.Is.
var (
	ErrConfigError       = New(CodeConfigError, "invalid configuration")
	ErrIOError           = New(CodeIOError, "input/output error")
	ErrAllocError        = New(CodeAllocError, "allocation failure")
	ErrInternalInvariant = New(CodeInternalInvariant, "internal invariant violated")
)

// IsConfigError checks if the error is a configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigError)
}

// IsIOError checks if the error is an I/O error.
func IsIOError(err error) bool {
	return errors.Is(err, ErrIOError)
}

// IsAllocError checks if the error is an allocation error.
func IsAllocError(err error) bool {
	return errors.Is(err, ErrAllocError)
}

// IsInternalInvariant checks if the error is an internal invariant violation.
func IsInternalInvariant(err error) bool {
	return errors.Is(err, ErrInternalInvariant)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts a user-facing message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
