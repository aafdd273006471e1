package store

import (
	"errors"
	"fmt"
)

// StorageError wraps a failure of the underlying SQLite engine: permissions,
// disk full, corruption, lock timeout. Operations never retry internally; the
// error propagates to whichever call triggered it.
type StorageError struct {
	// Op names the failed operation, e.g. "insert update".
	Op string

	// Path is the database file the operation ran against.
	Path string

	// Err is the underlying driver error.
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s (%s): %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying driver error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// fail wraps err into a StorageError for the given operation, preserving
// already-wrapped storage errors as-is.
func (s *Store) fail(op string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Path: s.path, Err: err}
}
