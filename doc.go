// Package palimpsest is a durability layer for versioned, mergeable document
// state. It persists the growing sequence of opaque update fragments a
// collaborative merge engine emits, replays them on reopen, and keeps the log
// bounded by periodically collapsing it to a single full-state snapshot.
//
// The merge engine itself is an external collaborator, seen only through the
// Document interface: it must guarantee that applying the same fragment twice
// is a no-op and that applying fragments in any order converges to the same
// state. palimpsest never inspects fragment bytes.
//
// # Storage layout
//
// One SQLite file may hold many logical documents, isolated by document name
// (a partition). Two addressing modes exist, chosen per session:
//
//   - exclusive: WithDirectory(dir) places one file per document at
//     <dir>/<name>.db
//   - shared: WithPath(p) stores many documents inside the one file at p
//
// Supplying both is a configuration error, reported before any I/O. With
// neither option the file is <name>.db in the working directory.
//
// # Lifecycle
//
// Attach returns synchronously; replay of the persisted log runs in the
// background and the session becomes synced exactly once:
//
//	sess, err := palimpsest.Attach(doc, "notes", palimpsest.WithDirectory(dir))
//	if err != nil {
//		return err
//	}
//	if err := sess.WhenSynced(ctx); err != nil {
//		return err
//	}
//
// From then on every fragment the document emits is appended to the log, and
// once a partition's row count reaches the trim threshold a debounced
// compaction replaces the whole tail with one fresh snapshot, atomically.
// Destroy detaches the session; ClearData additionally erases its storage.
package palimpsest
