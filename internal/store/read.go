package store

import (
	"context"
)

// UpdateRow is one persisted update fragment. Data is opaque to the store;
// only the merge engine can interpret it.
type UpdateRow struct {
	ID   int64
	Doc  string
	Data []byte
}

// CountUpdates returns the number of live update rows for a document.
func (s *Store) CountUpdates(ctx context.Context, doc string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM updates WHERE doc = ?
	`, doc).Scan(&count)
	if err != nil {
		return 0, s.fail("count updates", err)
	}
	return count, nil
}

// UpdatesSince returns all update rows for a document with id > cursor, in
// ascending id order. A cursor of 0 returns the whole partition.
//
// Returns an empty slice (not nil) if nothing is newer than the cursor.
func (s *Store) UpdatesSince(ctx context.Context, doc string, cursor int64) ([]UpdateRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, doc, data FROM updates
		WHERE doc = ? AND id > ?
		ORDER BY id ASC
	`, doc, cursor)
	if err != nil {
		return nil, s.fail("query updates", err)
	}
	defer rows.Close()

	var out []UpdateRow
	for rows.Next() {
		var row UpdateRow
		if err := rows.Scan(&row.ID, &row.Doc, &row.Data); err != nil {
			return nil, s.fail("scan update", err)
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, s.fail("iterate updates", err)
	}

	if out == nil {
		out = []UpdateRow{}
	}

	return out, nil
}

// DocInfo summarizes one partition for listing purposes.
type DocInfo struct {
	Name    string
	Updates int64
}

// ListDocs returns every document name present in the file, with live update
// row counts. Names present only in the custom table (metadata without any
// updates) are included with a zero count. Results ordered by name.
func (s *Store) ListDocs(ctx context.Context) ([]DocInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc, SUM(n) FROM (
			SELECT doc, COUNT(*) AS n FROM updates GROUP BY doc
			UNION ALL
			SELECT DISTINCT doc, 0 AS n FROM custom
		)
		GROUP BY doc
		ORDER BY doc
	`)
	if err != nil {
		return nil, s.fail("list docs", err)
	}
	defer rows.Close()

	var docs []DocInfo
	for rows.Next() {
		var info DocInfo
		if err := rows.Scan(&info.Name, &info.Updates); err != nil {
			return nil, s.fail("scan doc info", err)
		}
		docs = append(docs, info)
	}

	if err := rows.Err(); err != nil {
		return nil, s.fail("iterate docs", err)
	}

	if docs == nil {
		docs = []DocInfo{}
	}

	return docs, nil
}
