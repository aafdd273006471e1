package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a store backed by a temp file for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustInsert appends a fragment and fails the test on error.
func mustInsert(t *testing.T, s *Store, doc string, data []byte) int64 {
	t.Helper()
	id, err := s.InsertUpdate(context.Background(), doc, data)
	if err != nil {
		t.Fatalf("InsertUpdate() failed: %v", err)
	}
	return id
}

// mustCount returns the live row count for a doc and fails the test on error.
func mustCount(t *testing.T, s *Store, doc string) int64 {
	t.Helper()
	n, err := s.CountUpdates(context.Background(), doc)
	if err != nil {
		t.Fatalf("CountUpdates() failed: %v", err)
	}
	return n
}
