package harness

import (
	"context"
	"fmt"
	"slices"
)

// check evaluates one assertion and returns a failure description, or ""
// when it holds.
func (h *Harness) check(ctx context.Context, a Assertion) string {
	hd, ok := h.sessions[a.Session]
	if !ok {
		return fmt.Sprintf("%s: unknown session %q", a.Type, a.Session)
	}

	switch a.Type {
	case "row_count":
		// Cached count: refreshed by the session's own fetch/compact, which
		// is what scenarios manipulate.
		if got := hd.sess.RowCount(); got != a.Want {
			return fmt.Sprintf("row_count(%s): got %d, want %d", a.Session, got, a.Want)
		}
	case "entries":
		got := hd.doc.Entries()
		want := a.WantList
		if want == nil {
			want = []string{}
		}
		if !slices.Equal(got, want) {
			return fmt.Sprintf("entries(%s): got %v, want %v", a.Session, got, want)
		}
	case "meta":
		value, ok, err := hd.sess.Get(ctx, a.Key)
		if err != nil {
			return fmt.Sprintf("meta(%s,%s): %v", a.Session, a.Key, err)
		}
		if a.WantValue == "" {
			if ok {
				return fmt.Sprintf("meta(%s,%s): got %v, want absent", a.Session, a.Key, value)
			}
			return ""
		}
		if !ok {
			return fmt.Sprintf("meta(%s,%s): absent, want %q", a.Session, a.Key, a.WantValue)
		}
		if value != any(a.WantValue) {
			return fmt.Sprintf("meta(%s,%s): got %v, want %q", a.Session, a.Key, value, a.WantValue)
		}
	case "synced":
		if got := hd.sess.Synced(); got != a.WantBool {
			return fmt.Sprintf("synced(%s): got %v, want %v", a.Session, got, a.WantBool)
		}
	}
	return ""
}
