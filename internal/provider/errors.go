package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRoute means the resource address matched none of the known
	// URI patterns, or the operation is not defined for the matched pattern.
	ErrUnknownRoute = errors.New("unknown route")

	// ErrNotFound means a referenced single-item resource is absent.
	ErrNotFound = errors.New("not found")

	// ErrStreamUnsupported means the route/MIME combination has no stream
	// representation.
	ErrStreamUnsupported = errors.New("stream type not supported")
)

// ValidationError reports a caller-supplied value set that the layer
// refuses: a required field missing on insert, or a column outside the
// resource's whitelist.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func missingField(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

func unknownColumn(column string) *ValidationError {
	return &ValidationError{Field: column, Reason: "is not a known column"}
}

// ConstraintError reports a write the underlying store rejected, such as a
// foreign-key violation or a failed row-id assignment.
type ConstraintError struct {
	URI string
	Err error
}

func (e *ConstraintError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("constraint violation on %s: %v", e.URI, e.Err)
	}
	return fmt.Sprintf("constraint violation on %s", e.URI)
}

func (e *ConstraintError) Unwrap() error { return e.Err }
