package store

import (
	"context"
	"database/sql"
)

// InsertUpdate appends one fragment to a document's partition and returns the
// assigned id. Ids come from a single autoincrement sequence shared by every
// partition in the file, so they are strictly increasing per insert across
// the whole store. Durable on return.
func (s *Store) InsertUpdate(ctx context.Context, doc string, data []byte) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO updates (doc, data) VALUES (?, ?)
	`, doc, data)
	if err != nil {
		return 0, s.fail("insert update", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, s.fail("insert update", err)
	}

	return id, nil
}

// DeleteUpdatesBefore deletes all rows for a document with id strictly less
// than the given id. Other partitions in the file are untouched.
func (s *Store) DeleteUpdatesBefore(ctx context.Context, doc string, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM updates WHERE doc = ? AND id < ?
	`, doc, id)
	if err != nil {
		return s.fail("delete updates", err)
	}
	return nil
}

// Tx exposes write primitives scoped to one open transaction.
type Tx struct {
	tx  *sql.Tx
	ctx context.Context
	s   *Store
}

// InsertUpdate appends one fragment inside the transaction and returns its id.
func (t *Tx) InsertUpdate(doc string, data []byte) (int64, error) {
	res, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO updates (doc, data) VALUES (?, ?)
	`, doc, data)
	if err != nil {
		return 0, t.s.fail("tx insert update", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, t.s.fail("tx insert update", err)
	}

	return id, nil
}

// DeleteUpdatesBefore deletes rows with id < id for the document, inside the
// transaction.
func (t *Tx) DeleteUpdatesBefore(doc string, id int64) error {
	_, err := t.tx.ExecContext(t.ctx, `
		DELETE FROM updates WHERE doc = ? AND id < ?
	`, doc, id)
	if err != nil {
		return t.s.fail("tx delete updates", err)
	}
	return nil
}

// WithTx runs fn inside a single transaction. If fn returns an error the
// transaction is rolled back and no partial writes are visible; otherwise it
// commits before WithTx returns. This is the atomicity boundary compaction
// relies on: snapshot insert and tail delete either both land or neither does.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.fail("begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(&Tx{tx: tx, ctx: ctx, s: s}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return s.fail("commit tx", err)
	}

	return nil
}
