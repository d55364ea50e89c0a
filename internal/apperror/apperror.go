package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTooLarge     = errors.New("payload too large")
	ErrUpstream     = errors.New("upstream failure")
	ErrUnavailable  = errors.New("unavailable")
	ErrTimeout      = errors.New("timed out")
)

type AppError struct {
	Err     error  // sentinel the error maps to
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying failure, logged but never sent to clients
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause so errors.Is matches either.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness clash. The message is shown to end users
// ("Email already registered"), so it names the key, not the row.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned for every authentication failure. The message must
// stay generic: it is shown verbatim to the client.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

func TooLarge(field, message string) *AppError {
	return &AppError{
		Err:     ErrTooLarge,
		Message: message,
		Field:   field,
	}
}

// Upstream wraps a failure of an external collaborator (AI service,
// transcription engine). cause may be nil.
func Upstream(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: message,
		Cause:   cause,
	}
}

func Unavailable(message string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: message,
	}
}

func Timeout(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrTimeout,
		Message: message,
		Cause:   cause,
	}
}
