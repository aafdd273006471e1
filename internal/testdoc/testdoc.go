// Package testdoc provides a deterministic mergeable document model used as
// a stand-in for the external merge engine in tests and the conformance
// harness.
//
// A document's state is a set of text entries. One fragment adds one entry; a
// full-state encoding carries every entry at once. Because state is a set,
// the merge contract holds by construction: applying the same fragment twice
// is a no-op, fragments merge in any order, and a full-state encoding is
// itself applicable as a fragment.
package testdoc

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/roach88/palimpsest"
)

// Wire prefixes for the two fragment kinds. Everything after the prefix is
// entry text; entries in a snapshot are joined by the unit separator.
const (
	fragPrefix = "+"
	snapPrefix = "*"
	entrySep   = "\x1f"
)

// Doc is a deterministic mergeable document. Safe for concurrent use.
type Doc struct {
	mu          sync.Mutex
	entries     map[string]struct{}
	subs        map[int]palimpsest.UpdateHandler
	destroySubs map[int]func()
	nextSub     int
}

// New creates an empty document.
func New() *Doc {
	return &Doc{
		entries:     make(map[string]struct{}),
		subs:        make(map[int]palimpsest.UpdateHandler),
		destroySubs: make(map[int]func()),
	}
}

// Fragment encodes a single-entry fragment without applying it. Useful for
// simulating fragments arriving from elsewhere.
func Fragment(entry string) []byte {
	return []byte(fragPrefix + entry)
}

// Insert adds one entry as a local edit and notifies subscribers with the
// given origin tag (use "" for an anonymous local change).
func (d *Doc) Insert(entry, origin string) {
	update := Fragment(entry)
	d.mu.Lock()
	changed := d.mergeLocked(entry)
	handlers := d.handlersLocked()
	d.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range handlers {
		fn(update, origin)
	}
}

// ApplyUpdate merges one fragment or full-state encoding into the document
// and, when anything actually changed, notifies subscribers with the same
// update and origin. Duplicate fragments change nothing and stay silent.
func (d *Doc) ApplyUpdate(update []byte, origin string) error {
	text := string(update)

	var incoming []string
	switch {
	case strings.HasPrefix(text, fragPrefix):
		incoming = []string{strings.TrimPrefix(text, fragPrefix)}
	case strings.HasPrefix(text, snapPrefix):
		body := strings.TrimPrefix(text, snapPrefix)
		if body != "" {
			incoming = strings.Split(body, entrySep)
		}
	default:
		return fmt.Errorf("testdoc: malformed update %q", text)
	}

	d.mu.Lock()
	changed := false
	for _, entry := range incoming {
		if d.mergeLocked(entry) {
			changed = true
		}
	}
	handlers := d.handlersLocked()
	d.mu.Unlock()

	if !changed {
		return nil
	}
	for _, fn := range handlers {
		fn(update, origin)
	}
	return nil
}

// EncodeState returns a full-state encoding carrying every entry.
func (d *Doc) EncodeState() ([]byte, error) {
	return []byte(snapPrefix + strings.Join(d.Entries(), entrySep)), nil
}

// Subscribe registers fn for every subsequent change. The returned cancel is
// safe to call more than once.
func (d *Doc) Subscribe(fn palimpsest.UpdateHandler) (cancel func()) {
	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

// SubscribeDestroy registers fn to observe Destroy.
func (d *Doc) SubscribeDestroy(fn func()) (cancel func()) {
	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.destroySubs[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.destroySubs, id)
		d.mu.Unlock()
	}
}

// Destroy notifies destroy subscribers. The document itself stays usable so
// tests can inspect final state.
func (d *Doc) Destroy() {
	d.mu.Lock()
	handlers := make([]func(), 0, len(d.destroySubs))
	for _, fn := range d.destroySubs {
		handlers = append(handlers, fn)
	}
	d.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

// Entries returns the current entry set, sorted.
func (d *Doc) Entries() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.entries))
	for entry := range d.entries {
		out = append(out, entry)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct entries.
func (d *Doc) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Has reports whether the entry is present.
func (d *Doc) Has(entry string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.entries[entry]
	return ok
}

// mergeLocked adds entry to the set, reporting whether state changed.
func (d *Doc) mergeLocked(entry string) bool {
	if _, ok := d.entries[entry]; ok {
		return false
	}
	d.entries[entry] = struct{}{}
	return true
}

// handlersLocked snapshots the subscriber list. Notifications run outside
// the document lock so handlers may re-enter the document.
func (d *Doc) handlersLocked() []palimpsest.UpdateHandler {
	out := make([]palimpsest.UpdateHandler, 0, len(d.subs))
	for _, fn := range d.subs {
		out = append(out, fn)
	}
	return out
}
