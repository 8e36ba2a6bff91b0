package errors

import "fmt"

// ValidationError reports malformed or out-of-range input. It is recoverable
// locally and meant to be shown inline next to the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports a date overlap with existing reservations. The caller
// recovers by choosing different dates.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StateError reports an illegal lifecycle transition. It indicates a caller
// bug rather than bad user input.
type StateError struct {
	From string
	To   string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("illegal transition from %q to %q", e.From, e.To)
}

// NetworkError wraps a transport or backend failure. Mutations that hit one
// are rolled back before it propagates.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
