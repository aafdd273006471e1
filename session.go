package palimpsest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/roach88/palimpsest/internal/store"
)

// Session wires one document handle to its persisted update log. It owns the
// replay cursor, the cached partition row count, and the compaction debounce
// timer; none of that state is shared with other sessions even when they
// share a physical file.
//
// Lifecycle: Attach returns a live session immediately (Created), replay runs
// in the background (Initializing), and the session becomes Synced exactly
// once. Destroy is terminal and idempotent.
type Session struct {
	doc       Document
	name      string
	origin    string
	path      string
	exclusive bool
	threshold int64
	debounce  time.Duration
	logger    *slog.Logger

	syncedCh  chan struct{}
	closeOnce sync.Once

	mu          sync.Mutex
	store       *store.Store
	cursor      int64
	rowCount    int64
	synced      bool
	destroyed   bool
	initErr     error
	trimTimer   *time.Timer
	unsubscribe func()
	unobserve   func()
}

// Attach opens (or creates) durable storage for the named document and binds
// it to doc. The call does not replay anything itself: the document
// subscription is installed first and replay runs on a background goroutine,
// so callers always observe the synced transition through WhenSynced.
//
// Configuration errors (conflicting location options) and storage open
// failures surface here; no session exists when err is non-nil.
func Attach(doc Document, name string, opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	name = normalizeName(name)
	path, exclusive, err := cfg.resolveLocation(name)
	if err != nil {
		return nil, err
	}

	if cfg.dir != "" {
		if err := os.MkdirAll(cfg.dir, 0o700); err != nil {
			return nil, &StorageError{Op: "create directory", Path: cfg.dir, Err: err}
		}
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}

	s := &Session{
		doc:       doc,
		name:      name,
		origin:    cfg.origins.Generate(),
		path:      path,
		exclusive: exclusive,
		threshold: cfg.threshold,
		debounce:  cfg.debounce,
		logger:    cfg.logger.With("doc", name),
		syncedCh:  make(chan struct{}),
		store:     st,
	}

	// Subscribe before replay starts: a change emitted between Attach
	// returning and replay finishing must not be lost.
	s.unsubscribe = doc.Subscribe(s.handleUpdate)
	if obs, ok := doc.(DestroyObserver); ok {
		s.unobserve = obs.SubscribeDestroy(func() { s.Destroy() })
	}

	go s.initialize()

	return s, nil
}

// Name returns the normalized document name (the partition key).
func (s *Session) Name() string { return s.name }

// Origin returns this session's origin token. Fragments the session applies
// during replay carry it, so update handlers can recognize replay echoes.
func (s *Session) Origin() string { return s.origin }

// Path returns the physical database file backing this session.
func (s *Session) Path() string { return s.path }

// RowCount returns the cached count of live rows in this session's
// partition. It is refreshed by FetchUpdates and StoreState and incremented
// on every appended change; diagnostic only.
func (s *Session) RowCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowCount
}

// Synced reports whether initial replay has completed.
func (s *Session) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// WhenSynced blocks until initial replay completes, the session is destroyed,
// or ctx is done. It returns the replay error if initialization failed, nil
// otherwise.
func (s *Session) WhenSynced(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.syncedCh:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.initErr
	}
}

// initialize runs the initial replay with the two lifecycle hooks: the
// "before" hook writes the very first full-state snapshot (only ever fired
// from a genuinely empty partition), the "after" hook flips the session to
// Synced.
func (s *Session) initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.fetchLocked(context.Background(), s.writeInitialSnapshot, s.markSynced)
	if err != nil {
		s.initErr = err
		s.logger.Error("initial replay failed", "err", err)
		s.resolveSynced()
	}
}

// FetchUpdates replays every fragment newer than the session's cursor into
// the document, in ascending id order, tagged with the session origin. This
// is the integration point for cross-session convergence: rows written by
// other sessions sharing the partition are only observed here.
//
// Idempotent: with no intervening writes a second call applies nothing and
// leaves cursor and count unchanged. A no-op after Destroy.
func (s *Session) FetchUpdates(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchLocked(ctx, nil, nil)
}

func (s *Session) fetchLocked(ctx context.Context, before func(context.Context) error, after func()) error {
	if s.destroyed {
		return nil
	}

	n, err := s.store.CountUpdates(ctx, s.name)
	if err != nil {
		return err
	}

	rows, err := s.store.UpdatesSince(ctx, s.name, s.cursor)
	if err != nil {
		return err
	}

	// The before hook fires only when the partition has never been written.
	// Never "if nothing changed since last close": re-snapshotting a
	// non-empty partition on every reopen is exactly the unbounded-growth
	// defect this check exists to prevent.
	if n == 0 && before != nil {
		if err := before(ctx); err != nil {
			return err
		}
	}

	for _, row := range rows {
		if err := s.doc.ApplyUpdate(row.Data, s.origin); err != nil {
			return fmt.Errorf("apply update %d: %w", row.ID, err)
		}
	}

	if after != nil {
		after()
	}

	if len(rows) > 0 {
		s.cursor = rows[len(rows)-1].ID
	}

	fresh, err := s.store.CountUpdates(ctx, s.name)
	if err != nil {
		return err
	}
	s.rowCount = fresh

	return nil
}

// writeInitialSnapshot seeds an empty partition with one full-state row.
func (s *Session) writeInitialSnapshot(ctx context.Context) error {
	snap, err := s.doc.EncodeState()
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if _, err := s.store.InsertUpdate(ctx, s.name, snap); err != nil {
		return err
	}
	s.logger.Debug("wrote initial snapshot", "bytes", len(snap))
	return nil
}

func (s *Session) markSynced() {
	if s.synced {
		return
	}
	s.synced = true
	s.resolveSynced()
	s.logger.Debug("synced", "cursor", s.cursor)
}

func (s *Session) resolveSynced() {
	s.closeOnce.Do(func() { close(s.syncedCh) })
}

// StoreState drains pending fragments and, when force is set or the
// partition's row count has reached the trim threshold, collapses the whole
// partition to one fresh snapshot. The snapshot insert and the tail delete
// run in a single transaction: a crash mid-compaction leaves either the old
// log or the new snapshot, never neither.
//
// A session that never writes locally does not compact on its own even if
// the partition is huge; call StoreState(ctx, true) to compact from a pure
// reader. A no-op after Destroy.
func (s *Session) StoreState(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeStateLocked(ctx, force)
}

func (s *Session) storeStateLocked(ctx context.Context, force bool) error {
	if s.destroyed {
		return nil
	}

	if err := s.fetchLocked(ctx, nil, nil); err != nil {
		return err
	}

	if !force && s.rowCount < s.threshold {
		return nil
	}

	snap, err := s.doc.EncodeState()
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	err = s.store.WithTx(ctx, func(tx *store.Tx) error {
		id, err := tx.InsertUpdate(s.name, snap)
		if err != nil {
			return err
		}
		return tx.DeleteUpdatesBefore(s.name, id)
	})
	if err != nil {
		return err
	}

	fresh, err := s.store.CountUpdates(ctx, s.name)
	if err != nil {
		return err
	}
	before := s.rowCount
	s.rowCount = fresh
	s.logger.Debug("compacted", "before", before, "after", fresh)

	return nil
}

// handleUpdate is the document subscription callback. It appends every
// genuine change to the log; replay echoes (session origin) and anything
// after Destroy are ignored.
func (s *Session) handleUpdate(update []byte, origin string) {
	if origin == s.origin {
		return
	}

	ctx := context.Background()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}

	if _, err := s.store.InsertUpdate(ctx, s.name, update); err != nil {
		s.logger.Error("append failed", "err", err)
		return
	}
	s.rowCount++

	if s.rowCount < s.threshold {
		return
	}

	if s.debounce == 0 {
		if err := s.storeStateLocked(ctx, false); err != nil {
			s.logger.Error("compaction failed", "err", err)
		}
		return
	}
	s.armTrimLocked()
}

// armTrimLocked (re)starts the debounce timer: cancel, then reschedule.
// Compaction runs once after a quiet period, not once per threshold-crossing
// change.
func (s *Session) armTrimLocked() {
	if s.trimTimer != nil {
		s.trimTimer.Stop()
	}
	s.trimTimer = time.AfterFunc(s.debounce, s.trimFired)
}

func (s *Session) trimFired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	if err := s.storeStateLocked(context.Background(), false); err != nil {
		// Not retried here; the next qualifying change or a manual
		// StoreState call attempts again.
		s.logger.Error("compaction failed", "err", err)
	}
}

// Destroy detaches the session: the document subscription is removed, any
// pending compaction timer is cancelled, and this session's own store handle
// is closed. The physical file remains available to other sessions holding
// their own handles. Idempotent; every later get/set/del/append is a silent
// no-op so straggling notifications racing teardown are harmless.
func (s *Session) Destroy() error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return nil
	}
	s.destroyed = true
	if s.trimTimer != nil {
		s.trimTimer.Stop()
		s.trimTimer = nil
	}
	unsubscribe, unobserve := s.unsubscribe, s.unobserve
	s.unsubscribe, s.unobserve = nil, nil
	st := s.store
	s.resolveSynced()
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if unobserve != nil {
		unobserve()
	}

	s.logger.Debug("destroyed")
	return st.Close()
}

// ClearData destroys the session and then erases its storage: in exclusive
// mode the physical file is deleted; in shared mode only this document's
// partition is removed and the file stays intact for other documents.
func (s *Session) ClearData(ctx context.Context) error {
	if err := s.Destroy(); err != nil {
		return err
	}

	if s.exclusive {
		return removeDatabase(s.path)
	}

	st, err := store.Open(s.path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.ClearDoc(ctx, s.name)
}
