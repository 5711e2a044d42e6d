// Package apperr defines the error taxonomy shared by all domain services.
// Services return these errors; handlers translate them to HTTP responses
// with ToHTTP so that expected conditions (not found, bad input) stay
// distinguishable from storage failures and programming errors.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	// ErrNotFound marks a lookup whose id did not resolve.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable marks a durable-store failure. It is always
	// surfaced as a server error, never swallowed.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries one or more client-input problems.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%d invalid fields)", e.Message, len(e.Fields))
}

// NotFoundf returns an error wrapping ErrNotFound with an identifying message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Validationf returns a ValidationError with a formatted message.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ValidationFields returns a ValidationError carrying per-field messages.
func ValidationFields(message string, fields ...FieldError) error {
	return &ValidationError{Message: message, Fields: fields}
}

// Storage wraps a storage-layer failure so callers can match it with
// errors.Is(err, ErrStorageUnavailable) without losing the cause.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

// ToHTTP maps a service error onto an echo HTTP error. Unrecognized errors
// become opaque 500s so internal detail never leaks past the message string.
func ToHTTP(err error) error {
	if err == nil {
		return nil
	}

	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		if len(ve.Fields) > 0 {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{
				"error":  ve.Message,
				"fields": ve.Fields,
			})
		}
		return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrStorageUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
