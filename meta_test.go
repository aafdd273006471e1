package palimpsest_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/palimpsest"
	"github.com/roach88/palimpsest/internal/store"
	"github.com/roach88/palimpsest/internal/testdoc"
)

func TestMeta_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	sess := attach(t, testdoc.New(), "notes", palimpsest.WithDirectory(dir))

	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"string", "hello", "hello"},
		{"number", 42, float64(42)}, // JSON numbers decode as float64
		{"bool", true, true},
		{"null", nil, nil},
		{"list", []any{"a", "b"}, []any{"a", "b"}},
		{"object", map[string]any{"k": "v"}, map[string]any{"k": "v"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, sess.Set(ctx, tc.name, tc.value))
			got, ok, err := sess.Get(ctx, tc.name)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMeta_AbsentKey(t *testing.T) {
	sess := attach(t, testdoc.New(), "notes", palimpsest.WithDirectory(t.TempDir()))

	_, ok, err := sess.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMeta_Del(t *testing.T) {
	ctx := context.Background()
	sess := attach(t, testdoc.New(), "notes", palimpsest.WithDirectory(t.TempDir()))

	require.NoError(t, sess.Set(ctx, "k", "v"))
	require.NoError(t, sess.Del(ctx, "k"))

	_, ok, err := sess.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sess.Del(ctx, "k"), "deleting an absent key is a no-op")
}

func TestMeta_UnparsableValueReturnsRawText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	ctx := context.Background()

	sess := attach(t, testdoc.New(), "notes", palimpsest.WithPath(path))

	// Plant a value that is not valid JSON, as a foreign writer might.
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.PutMeta(ctx, sess.Name(), "legacy", "not json"))
	require.NoError(t, st.Close())

	got, ok, err := sess.Get(ctx, "legacy")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "not json", got)
}

func TestMeta_NoopsAfterDestroy(t *testing.T) {
	ctx := context.Background()
	sess := attach(t, testdoc.New(), "notes", palimpsest.WithDirectory(t.TempDir()))
	require.NoError(t, sess.Destroy())

	require.NoError(t, sess.Set(ctx, "k", "v"))
	_, ok, err := sess.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, sess.Del(ctx, "k"))
}
