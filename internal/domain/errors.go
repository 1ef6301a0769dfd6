package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by persistence lookups when no row matches.
var ErrNotFound = errors.New("not found")

// PersistenceErrorKind classifies persistence gateway failures.
type PersistenceErrorKind string

// Persistence error kinds.
const (
	// PersistenceConflict signals a unique-constraint race; the caller
	// re-reads and retries the write as an update once.
	PersistenceConflict PersistenceErrorKind = "conflict"
	// PersistenceUnavailable signals the storage backend cannot be
	// reached; the current source's run aborts, others continue.
	PersistenceUnavailable PersistenceErrorKind = "unavailable"
)

// PersistenceError wraps a storage failure with its classification.
type PersistenceError struct {
	Kind PersistenceErrorKind
	Err  error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError creates a classified persistence error.
func NewPersistenceError(kind PersistenceErrorKind, err error) *PersistenceError {
	return &PersistenceError{Kind: kind, Err: err}
}

// IsPersistenceConflict reports whether err is a conflict persistence error.
func IsPersistenceConflict(err error) bool {
	var perr *PersistenceError
	return errors.As(err, &perr) && perr.Kind == PersistenceConflict
}

// IsPersistenceUnavailable reports whether err is an unavailable persistence error.
func IsPersistenceUnavailable(err error) bool {
	var perr *PersistenceError
	return errors.As(err, &perr) && perr.Kind == PersistenceUnavailable
}
