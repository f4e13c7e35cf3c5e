package core

import "fmt"

// ValidationError covers bad input shape or range (month bounds, missing
// fields, unknown status values).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// DuplicateError is returned when a create would violate a uniqueness rule
// (attendance per employee/day, site number, user email).
type DuplicateError struct {
	Message string
}

func (e *DuplicateError) Error() string { return e.Message }

// NotFoundError means the id does not resolve to a live record.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// ForbiddenError is a role or state gate failure.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// UpstreamError wraps a datastore or collaborator failure.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }
