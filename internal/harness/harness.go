package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/roach88/palimpsest"
	"github.com/roach88/palimpsest/internal/testdoc"
)

// TraceEvent is one seq-stamped entry in a scenario trace. All ordering uses
// the harness's logical seq counter, never wall time, so replays of the same
// scenario produce identical traces.
type TraceEvent struct {
	Seq     int64    `json:"seq"`
	Type    string   `json:"type"`
	Session string   `json:"session,omitempty"`
	Doc     string   `json:"doc,omitempty"`
	Entry   string   `json:"entry,omitempty"`
	Key     string   `json:"key,omitempty"`
	Rows    int64    `json:"rows"`
	Entries []string `json:"entries,omitempty"`
	Force   bool     `json:"force,omitempty"`
}

// Result carries the trace and any assertion failures from one scenario run.
type Result struct {
	Scenario *Scenario
	Trace    []TraceEvent
	Failures []string
}

// Passed reports whether every assertion held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Harness executes scenarios against a real store in a temp directory. All
// sessions share one database file (shared addressing), isolated by document
// name, which is the layout the isolation scenarios exist to exercise.
type Harness struct {
	path   string
	logger *slog.Logger

	seq      int64
	trace    []TraceEvent
	sessions map[string]*handle
}

type handle struct {
	sess *palimpsest.Session
	doc  *testdoc.Doc
}

// New creates a harness whose store lives under dir (use t.TempDir()).
func New(dir string, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{
		path:     filepath.Join(dir, "harness.db"),
		logger:   logger,
		sessions: make(map[string]*handle),
	}
}

// Run executes the scenario's steps in order, evaluates its assertions, and
// detaches every session that is still attached before returning.
func (h *Harness) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	h.logger.Info("running scenario", "name", sc.Name, "steps", len(sc.Steps))

	defer func() {
		for _, hd := range h.sessions {
			hd.sess.Destroy()
		}
	}()

	for i, step := range sc.Steps {
		if err := h.runStep(ctx, sc, step); err != nil {
			return nil, fmt.Errorf("scenario %s step %d: %w", sc.Name, i, err)
		}
	}

	result := &Result{Scenario: sc, Trace: h.trace}
	for _, a := range sc.Assertions {
		if failure := h.check(ctx, a); failure != "" {
			result.Failures = append(result.Failures, failure)
		}
	}

	h.logger.Info("scenario finished", "name", sc.Name, "failures", len(result.Failures))
	return result, nil
}

func (h *Harness) runStep(ctx context.Context, sc *Scenario, step Step) error {
	switch {
	case step.Attach != nil:
		return h.attach(ctx, sc, step.Attach)
	case step.Insert != nil:
		hd := h.sessions[step.Insert.Session]
		hd.doc.Insert(step.Insert.Entry, "")
		h.record(TraceEvent{
			Type:    "insert",
			Session: step.Insert.Session,
			Entry:   step.Insert.Entry,
			Rows:    hd.sess.RowCount(),
		})
		return nil
	case step.Fetch != nil:
		hd := h.sessions[step.Fetch.Session]
		if err := hd.sess.FetchUpdates(ctx); err != nil {
			return err
		}
		h.record(TraceEvent{
			Type:    "fetch",
			Session: step.Fetch.Session,
			Rows:    hd.sess.RowCount(),
			Entries: hd.doc.Entries(),
		})
		return nil
	case step.StoreState != nil:
		hd := h.sessions[step.StoreState.Session]
		if err := hd.sess.StoreState(ctx, step.StoreState.Force); err != nil {
			return err
		}
		h.record(TraceEvent{
			Type:    "store_state",
			Session: step.StoreState.Session,
			Force:   step.StoreState.Force,
			Rows:    hd.sess.RowCount(),
		})
		return nil
	case step.SetMeta != nil:
		hd := h.sessions[step.SetMeta.Session]
		if err := hd.sess.Set(ctx, step.SetMeta.Key, step.SetMeta.Value); err != nil {
			return err
		}
		h.record(TraceEvent{
			Type:    "set_meta",
			Session: step.SetMeta.Session,
			Key:     step.SetMeta.Key,
			Rows:    hd.sess.RowCount(),
		})
		return nil
	case step.DelMeta != nil:
		hd := h.sessions[step.DelMeta.Session]
		if err := hd.sess.Del(ctx, step.DelMeta.Key); err != nil {
			return err
		}
		h.record(TraceEvent{
			Type:    "del_meta",
			Session: step.DelMeta.Session,
			Key:     step.DelMeta.Key,
			Rows:    hd.sess.RowCount(),
		})
		return nil
	case step.Detach != nil:
		hd := h.sessions[step.Detach.Session]
		if err := hd.sess.Destroy(); err != nil {
			return err
		}
		h.record(TraceEvent{
			Type:    "detach",
			Session: step.Detach.Session,
			Rows:    hd.sess.RowCount(),
		})
		return nil
	case step.ClearDoc != nil:
		if err := palimpsest.ClearDocument(ctx, step.ClearDoc.Doc, palimpsest.WithPath(h.path)); err != nil {
			return err
		}
		h.record(TraceEvent{
			Type: "clear_doc",
			Doc:  step.ClearDoc.Doc,
		})
		return nil
	}
	return fmt.Errorf("empty step")
}

func (h *Harness) attach(ctx context.Context, sc *Scenario, step *AttachStep) error {
	opts := []palimpsest.Option{
		palimpsest.WithPath(h.path),
		palimpsest.WithTrimDebounce(0),
		palimpsest.WithOriginGenerator(palimpsest.NewFixedOrigins("origin-" + step.Session)),
		palimpsest.WithLogger(h.logger),
	}
	if sc.TrimThreshold > 0 {
		opts = append(opts, palimpsest.WithTrimThreshold(sc.TrimThreshold))
	}

	doc := testdoc.New()
	sess, err := palimpsest.Attach(doc, step.Doc, opts...)
	if err != nil {
		return err
	}
	h.sessions[step.Session] = &handle{sess: sess, doc: doc}

	h.record(TraceEvent{Type: "attach", Session: step.Session, Doc: step.Doc})

	if err := sess.WhenSynced(ctx); err != nil {
		return fmt.Errorf("session %q sync: %w", step.Session, err)
	}
	h.record(TraceEvent{
		Type:    "synced",
		Session: step.Session,
		Rows:    sess.RowCount(),
		Entries: doc.Entries(),
	})
	return nil
}

func (h *Harness) record(ev TraceEvent) {
	h.seq++
	ev.Seq = h.seq
	h.trace = append(h.trace, ev)
}
