package store

import "context"

// ClearDoc erases one document's partition: every update row and every
// metadata row for that name, atomically. Other partitions in the file are
// untouched and the file itself is never deleted by this path.
func (s *Store) ClearDoc(ctx context.Context, doc string) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.tx.ExecContext(ctx, `DELETE FROM updates WHERE doc = ?`, doc); err != nil {
			return s.fail("clear updates", err)
		}
		if _, err := tx.tx.ExecContext(ctx, `DELETE FROM custom WHERE doc = ?`, doc); err != nil {
			return s.fail("clear meta", err)
		}
		return nil
	})
}
