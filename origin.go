package palimpsest

import (
	"sync"

	"github.com/google/uuid"
)

// OriginGenerator produces unique origin tokens for sessions. A session tags
// fragments it applies during replay with its own token, which is how the
// update handler tells replay echoes apart from genuine document changes.
//
// Implemented by OriginV7Generator (production) and FixedOrigins (tests).
type OriginGenerator interface {
	Generate() string
}

// OriginV7Generator generates time-sortable UUIDv7 origin tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, making tokens
// sortable by session creation time, which is helpful when reading logs.
//
// Thread-safety: OriginV7Generator is stateless and safe for concurrent use.
type OriginV7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g OriginV7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedOrigins returns predetermined origin tokens in order.
//
// This enables deterministic session identity in tests and golden trace
// comparison.
//
// Thread-safety: FixedOrigins is safe for concurrent use via internal mutex.
type FixedOrigins struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedOrigins creates a generator that returns tokens in order.
//
// Example:
//
//	gen := NewFixedOrigins("session-1", "session-2")
//	gen.Generate() // "session-1"
//	gen.Generate() // "session-2"
//	gen.Generate() // panic: all tokens exhausted
func NewFixedOrigins(tokens ...string) *FixedOrigins {
	return &FixedOrigins{tokens: tokens}
}

// Generate returns the next predetermined token.
//
// Panics if all tokens have been consumed. Fail-fast: a test that attaches
// more sessions than it declared tokens for is a test bug.
func (g *FixedOrigins) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.tokens) {
		panic("palimpsest: FixedOrigins exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
