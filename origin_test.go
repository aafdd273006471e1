package palimpsest_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/palimpsest"
)

func TestOriginV7Generator_Unique(t *testing.T) {
	gen := palimpsest.OriginV7Generator{}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := gen.Generate()
		require.False(t, seen[token], "duplicate token %q", token)
		seen[token] = true

		parsed, err := uuid.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	}
}

func TestFixedOrigins_ReturnsInOrder(t *testing.T) {
	gen := palimpsest.NewFixedOrigins("one", "two")

	assert.Equal(t, "one", gen.Generate())
	assert.Equal(t, "two", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}
