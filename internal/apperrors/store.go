package apperrors

import (
	"errors"
	"fmt"
)

// Kind of persistence failure
type StoreErrorKind int

const (
	KindOther StoreErrorKind = iota
	KindUniqueViolation
	KindNotFound
)

func (k StoreErrorKind) String() string {
	switch k {
	case KindUniqueViolation:
		return "unique_violation"
	case KindNotFound:
		return "not_found"
	default:
		return "other"
	}
}

// StoreError is the only error type repositories return
// Field is set for unique violations when the violated column is known
type StoreError struct {
	Kind  StoreErrorKind
	Field string
	Err   error
}

func (e *StoreError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("store error: %s on %q: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("store error: %s: %v", e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewUniqueViolation(field string, err error) *StoreError {
	return &StoreError{Kind: KindUniqueViolation, Field: field, Err: err}
}

// NewStoreNotFound wraps well known not found error (like ErrUserNotFound)
func NewStoreNotFound(err error) *StoreError {
	return &StoreError{Kind: KindNotFound, Err: err}
}

func NewStoreOther(err error) *StoreError {
	return &StoreError{Kind: KindOther, Err: err}
}

// AsStoreError extracts StoreError from the error chain
func AsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	ok := errors.As(err, &se)
	return se, ok
}
