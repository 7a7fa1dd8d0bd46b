package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// FieldError describes one violated input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field violation found in one input, not just the first
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// Add records a violation for field
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasField reports whether field has at least one violation
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// OrNil returns e when it holds violations and nil otherwise
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError is returned when an id does not resolve
type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s %s", e.Resource, e.ID, ErrNotFound)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ForbiddenError is returned when the acting team lacks the right to perform Action
type ForbiddenError struct {
	RequestID uuid.UUID
	TeamID    uuid.UUID
	Action    string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: team %s may not %s match request %s", ErrForbidden, e.TeamID, e.Action, e.RequestID)
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// InvalidTransitionError is returned when the lifecycle does not allow From -> To
type InvalidTransitionError struct {
	RequestID uuid.UUID
	From      MatchStatus
	To        MatchStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: match request %s is %s, cannot move to %s", ErrInvalidTransition, e.RequestID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
