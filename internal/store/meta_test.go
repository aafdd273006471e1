package store

import (
	"context"
	"testing"
)

func TestGetMeta_AbsentKey(t *testing.T) {
	s := createTestStore(t)

	_, ok, err := s.GetMeta(context.Background(), "doc-a", "missing")
	if err != nil {
		t.Fatalf("GetMeta() failed: %v", err)
	}
	if ok {
		t.Error("expected ok=false for absent key")
	}
}

func TestPutMeta_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.PutMeta(ctx, "doc-a", "color", `"blue"`); err != nil {
		t.Fatalf("PutMeta() failed: %v", err)
	}

	value, ok, err := s.GetMeta(ctx, "doc-a", "color")
	if err != nil {
		t.Fatalf("GetMeta() failed: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true")
	}
	if value != `"blue"` {
		t.Errorf("value = %q, want %q", value, `"blue"`)
	}
}

func TestPutMeta_Upserts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.PutMeta(ctx, "doc-a", "rev", "1"); err != nil {
		t.Fatalf("first PutMeta() failed: %v", err)
	}
	if err := s.PutMeta(ctx, "doc-a", "rev", "2"); err != nil {
		t.Fatalf("second PutMeta() failed: %v", err)
	}

	value, ok, err := s.GetMeta(ctx, "doc-a", "rev")
	if err != nil || !ok {
		t.Fatalf("GetMeta() = %v, ok=%v", err, ok)
	}
	if value != "2" {
		t.Errorf("value = %q, want %q", value, "2")
	}

	// At most one row per (doc, key).
	var count int
	err = s.db.QueryRow("SELECT COUNT(*) FROM custom WHERE doc = 'doc-a' AND key = 'rev'").Scan(&count)
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1", count)
	}
}

func TestMeta_ScopedByDoc(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.PutMeta(ctx, "doc-a", "k", "from-a"); err != nil {
		t.Fatalf("PutMeta() failed: %v", err)
	}
	if err := s.PutMeta(ctx, "doc-b", "k", "from-b"); err != nil {
		t.Fatalf("PutMeta() failed: %v", err)
	}

	value, ok, err := s.GetMeta(ctx, "doc-a", "k")
	if err != nil || !ok {
		t.Fatalf("GetMeta() = %v, ok=%v", err, ok)
	}
	if value != "from-a" {
		t.Errorf("doc-a value = %q, want %q", value, "from-a")
	}
}

func TestDeleteMeta(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.PutMeta(ctx, "doc-a", "k", "v"); err != nil {
		t.Fatalf("PutMeta() failed: %v", err)
	}
	if err := s.DeleteMeta(ctx, "doc-a", "k"); err != nil {
		t.Fatalf("DeleteMeta() failed: %v", err)
	}

	_, ok, err := s.GetMeta(ctx, "doc-a", "k")
	if err != nil {
		t.Fatalf("GetMeta() failed: %v", err)
	}
	if ok {
		t.Error("expected key to be deleted")
	}

	// Deleting an absent key is a no-op, not an error.
	if err := s.DeleteMeta(ctx, "doc-a", "k"); err != nil {
		t.Errorf("DeleteMeta() on absent key failed: %v", err)
	}
}
