package palimpsest

import (
	"errors"
	"fmt"

	"github.com/roach88/palimpsest/internal/store"
)

// ConfigError reports an invalid session configuration, detected
// synchronously before any I/O. No session is created.
type ConfigError struct {
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Reason)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// StorageError wraps a failure of the underlying SQLite engine. It propagates
// to the caller of whichever operation triggered it and is never retried
// internally.
type StorageError = store.StorageError

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	return store.IsStorageError(err)
}
