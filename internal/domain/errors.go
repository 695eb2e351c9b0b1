package domain

import "fmt"

// ValidationError reports malformed input the caller can correct.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func NewValidationError(msg string) error {
	return &ValidationError{msg: msg}
}

type ConflictCause string

const (
	ConflictBooking ConflictCause = "booking"
	ConflictBlock   ConflictCause = "block"
)

// ConflictError reports that a requested interval collides with an
// occupying booking or an active block.
type ConflictError struct {
	Cause ConflictCause
	msg   string
}

func (e *ConflictError) Error() string {
	return e.msg
}

func NewConflictError(cause ConflictCause, msg string) error {
	return &ConflictError{Cause: cause, msg: msg}
}

type NotFoundError struct {
	Resource string
	Ref      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Ref)
}

// RuleViolationError reports an operation that is invalid for the current
// state of an aggregate.
type RuleViolationError struct {
	msg string
}

func (e *RuleViolationError) Error() string {
	return e.msg
}

func NewRuleViolation(msg string) error {
	return &RuleViolationError{msg: msg}
}
