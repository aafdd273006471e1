package palimpsest

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/roach88/palimpsest/internal/store"
)

// ClearDocument erases a document's persisted data without requiring an
// attached session. The location options select the mode:
//
//   - WithDirectory (or no location option): exclusive addressing; the
//     document's physical file is deleted if present, and a missing file is
//     not an error.
//   - WithPath: shared addressing; only the document's rows (updates and
//     metadata) are removed, other partitions and the file itself are left
//     intact. A missing file is not an error.
func ClearDocument(ctx context.Context, name string, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	name = normalizeName(name)
	path, exclusive, err := cfg.resolveLocation(name)
	if err != nil {
		return err
	}

	if exclusive {
		return removeDatabase(path)
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.ClearDoc(ctx, name)
}

// removeDatabase deletes a SQLite database file along with its WAL sidecar
// files. Absent files are not an error.
func removeDatabase(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &StorageError{Op: "remove database", Path: p, Err: err}
		}
	}
	return nil
}
