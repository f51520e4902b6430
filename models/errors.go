package models

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrInvalidToken         = errors.New("invalid token")
	ErrExpiredToken         = errors.New("expired token")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("resource not found")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrInvalidInput         = errors.New("invalid input")
)

type FieldMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field violations in the order they were checked.
type ValidationError struct {
	Errors []FieldMessage
}

func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldMessage{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Errors) > 0
}

// First returns the first recorded violation.
func (e *ValidationError) First() FieldMessage {
	if !e.HasErrors() {
		return FieldMessage{}
	}
	return e.Errors[0]
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fm := range e.Errors {
		parts = append(parts, fm.Field+": "+fm.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-violation error.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}
