package errors

import (
	"errors"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// StatusFor maps engine errors onto HTTP status codes for the handler layer.
func StatusFor(err error) int {
	var (
		validationErr *ValidationError
		conflictErr   *ConflictError
		stateErr      *StateError
		networkErr    *NetworkError
		httpErr       *HTTPError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	case errors.As(err, &stateErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &networkErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Helper for common errors
var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
	ErrNotFound     = func(msg string) *HTTPError { return NewHTTPError(http.StatusNotFound, msg) }
)
