// Package errors provides standardized domain errors with codes for the Sadhana API.
//
// Usage:
//
//	// In services - return typed errors
//	if url == "" {
//	    return errors.NoPlayableSource("no audio link for this recording")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNoPlayableSource) {
//	    response.UnprocessableEntity(w, err.Error(), logger)
//	    return
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeValidation        Code = "VALIDATION"
	CodeInternal          Code = "INTERNAL"
	CodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"
	CodeStorageWrite      Code = "STORAGE_WRITE_FAILURE"
	CodeStorageCorrupt    Code = "STORAGE_READ_CORRUPT"
	CodeNoPlayableSource  Code = "NO_PLAYABLE_SOURCE"
	CodePlaybackRejected  Code = "PLAYBACK_REJECTED"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNoPlayableSource:
		return http.StatusUnprocessableEntity
	case CodeSourceUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithMessage returns a new error with the same code and a different message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Details: e.Details, cause: e.cause}
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal          = &Error{Code: CodeInternal, Message: "internal error"}
	ErrSourceUnavailable = &Error{Code: CodeSourceUnavailable, Message: "catalog source unavailable"}
	ErrStorageWrite      = &Error{Code: CodeStorageWrite, Message: "storage write failed"}
	ErrStorageCorrupt    = &Error{Code: CodeStorageCorrupt, Message: "stored value corrupt"}
	ErrNoPlayableSource  = &Error{Code: CodeNoPlayableSource, Message: "no playable source"}
	ErrPlaybackRejected  = &Error{Code: CodePlaybackRejected, Message: "playback rejected by host"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// SourceUnavailable creates a catalog source error.
func SourceUnavailable(msg string) *Error {
	return &Error{Code: CodeSourceUnavailable, Message: msg}
}

// StorageWrite creates a storage write error.
func StorageWrite(msg string) *Error {
	return &Error{Code: CodeStorageWrite, Message: msg}
}

// StorageCorrupt creates a corrupt storage error.
func StorageCorrupt(msg string) *Error {
	return &Error{Code: CodeStorageCorrupt, Message: msg}
}

// NoPlayableSource creates an error for items without a media URL.
func NoPlayableSource(msg string) *Error {
	return &Error{Code: CodeNoPlayableSource, Message: msg}
}

// PlaybackRejected creates an error for host playback refusal.
func PlaybackRejected(msg string) *Error {
	return &Error{Code: CodePlaybackRejected, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
