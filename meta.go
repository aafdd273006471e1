package palimpsest

import (
	"context"
	"encoding/json"
	"fmt"
)

// Set stores a metadata value under key for this session's document. The
// value is JSON-serialized; what it means is entirely the caller's concern.
// A silent no-op after Destroy.
func (s *Session) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode metadata %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	return s.store.PutMeta(ctx, s.name, key, string(data))
}

// Get returns the metadata value stored under key. ok is false when the key
// is absent. Stored text that does not parse as JSON is returned verbatim as
// a string rather than erroring, since values are caller-opaque. Reports
// absent after Destroy.
func (s *Session) Get(ctx context.Context, key string) (value any, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil, false, nil
	}

	raw, ok, err := s.store.GetMeta(ctx, s.name, key)
	if err != nil || !ok {
		return nil, ok, err
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw, true, nil
	}
	return v, true, nil
}

// Del removes the metadata value under key, if present. A silent no-op after
// Destroy.
func (s *Session) Del(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	return s.store.DeleteMeta(ctx, s.name, key)
}
