package errors

import (
	"errors"
	"fmt"
)

// ── error classes ──
//
// Service sentinels wrap exactly one of these, so a caller can match either
// the precise sentinel or the class with errors.Is.

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

// ErrOptimisticLock the row was modified by another request.
var ErrOptimisticLock = fmt.Errorf("%w: record was modified by another request, reload and retry", ErrConflict)

// Kind machine-checkable error classification.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindInternal   Kind = "internal"
)

// KindOf classifies err. Anything that is not a validation, conflict or
// not-found error is internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}

// FieldError a validation failure tied to one input field.
// Row is the zero-based bulk entry index, or -1 for non-bulk fields.
type FieldError struct {
	Field   string `json:"field"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// NewFieldError builds a FieldError for a non-bulk field.
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Row: -1, Message: message}
}

func (e *FieldError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("%s (entry %d): %s", e.Field, e.Row+1, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// FieldErrors a set of field failures reported together.
type FieldErrors []*FieldError

func (fe FieldErrors) Error() string {
	switch len(fe) {
	case 0:
		return ErrValidation.Error()
	case 1:
		return fe[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", fe[0].Error(), len(fe)-1)
	}
}

func (fe FieldErrors) Unwrap() error { return ErrValidation }

// Fields extracts field failures from err, if any.
func Fields(err error) []*FieldError {
	var many FieldErrors
	if errors.As(err, &many) {
		return many
	}
	var one *FieldError
	if errors.As(err, &one) {
		return []*FieldError{one}
	}
	return nil
}
