// Package store provides SQLite-backed durable storage for document update logs.
//
// One physical database file holds any number of document partitions. A
// partition is the set of rows belonging to one document name across the two
// tables:
//   - updates: append-only update fragments, ordered by a rowid shared across
//     all partitions in the file
//   - custom: per-document key/value metadata, opaque to the store
//
// # Ordering
//
// All replay ordering uses the autoincrement id, never timestamps. For a fixed
// document name, feeding the live rows to the merge engine in ascending id
// order reconstructs current document state. Rows are immutable once written;
// the only mutation is deletion during compaction, and compaction always runs
// inside a single transaction (snapshot insert + tail delete), so a crash can
// never leave a partition without a reconstructable state.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// All failures surface as *StorageError values carrying the operation name
// and database path; the root package re-exports the type.
package store
