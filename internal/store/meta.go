package store

import (
	"context"
	"database/sql"
	"errors"
)

// GetMeta looks up the metadata value stored under (doc, key).
// Returns ok=false with no error when the key is absent.
func (s *Store) GetMeta(ctx context.Context, doc, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT value FROM custom WHERE doc = ? AND key = ?
	`, doc, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.fail("get meta", err)
	}
	return value, true, nil
}

// PutMeta upserts the metadata value under (doc, key). At most one value per
// (doc, key) exists at any time.
func (s *Store) PutMeta(ctx context.Context, doc, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO custom (doc, key, value) VALUES (?, ?, ?)
		ON CONFLICT(doc, key) DO UPDATE SET value = excluded.value
	`, doc, key, value)
	if err != nil {
		return s.fail("put meta", err)
	}
	return nil
}

// DeleteMeta removes the metadata value under (doc, key) if present.
// Deleting an absent key is not an error.
func (s *Store) DeleteMeta(ctx context.Context, doc, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM custom WHERE doc = ? AND key = ?
	`, doc, key)
	if err != nil {
		return s.fail("delete meta", err)
	}
	return nil
}
