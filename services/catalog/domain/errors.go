package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the catalog domain. Use errors.Is() to check these.
// Each maps to one HTTP status in pkg/errhttp.
var (
	// ErrValidation indicates missing or malformed input or a broken business rule.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("already exists")
)

// Entity-specific errors. They wrap the sentinels above.
var (
	ErrCategoryNotFound    = fmt.Errorf("category %w", ErrNotFound)
	ErrSubcategoryNotFound = fmt.Errorf("subcategory %w", ErrNotFound)
	ErrItemNotFound        = fmt.Errorf("item %w", ErrNotFound)

	ErrCategoryAlreadyExists    = fmt.Errorf("category %w", ErrConflict)
	ErrSubcategoryAlreadyExists = fmt.Errorf("subcategory %w", ErrConflict)
	ErrItemAlreadyExists        = fmt.Errorf("item %w", ErrConflict)
)

// ValidationError describes rejected input. Fields optionally maps a field
// name to the reason it failed.
type ValidationError struct {
	Reason string
	Fields map[string]string
}

// NewValidationError returns a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
