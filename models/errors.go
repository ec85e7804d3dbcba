package models

import "fmt"

// ValidationError: bad input, rejected before any state mutation. The caller
// can retry with corrected input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StateConflictError: the operation is not allowed in the entity's current
// status. Nothing is mutated.
type StateConflictError struct {
	Msg string
}

func (e *StateConflictError) Error() string { return e.Msg }

func StateConflictf(format string, args ...any) error {
	return &StateConflictError{Msg: fmt.Sprintf(format, args...)}
}

// ReferentialError: a referenced batch/material/vendor/document does not
// exist. Surfaced to the caller, never auto-corrected.
type ReferentialError struct {
	Msg string
}

func (e *ReferentialError) Error() string { return e.Msg }

func Referentialf(format string, args ...any) error {
	return &ReferentialError{Msg: fmt.Sprintf(format, args...)}
}
