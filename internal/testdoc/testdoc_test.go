package testdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyUpdate_Idempotent(t *testing.T) {
	d := New()

	frag := Fragment("alpha")
	require.NoError(t, d.ApplyUpdate(frag, "test"))
	require.NoError(t, d.ApplyUpdate(frag, "test"))

	assert.Equal(t, []string{"alpha"}, d.Entries())
}

func TestApplyUpdate_OrderIndependent(t *testing.T) {
	a, b := New(), New()

	frags := [][]byte{Fragment("one"), Fragment("two"), Fragment("three")}

	for _, f := range frags {
		require.NoError(t, a.ApplyUpdate(f, "test"))
	}
	for i := len(frags) - 1; i >= 0; i-- {
		require.NoError(t, b.ApplyUpdate(frags[i], "test"))
	}

	assert.Equal(t, a.Entries(), b.Entries())
}

func TestApplyUpdate_Malformed(t *testing.T) {
	d := New()
	assert.Error(t, d.ApplyUpdate([]byte("bogus"), "test"))
}

func TestEncodeState_RoundTrip(t *testing.T) {
	src := New()
	src.Insert("alpha", "")
	src.Insert("beta", "")

	snap, err := src.EncodeState()
	require.NoError(t, err)

	dst := New()
	require.NoError(t, dst.ApplyUpdate(snap, "test"))
	assert.Equal(t, src.Entries(), dst.Entries())
}

func TestEncodeState_Empty(t *testing.T) {
	snap, err := New().EncodeState()
	require.NoError(t, err)

	dst := New()
	require.NoError(t, dst.ApplyUpdate(snap, "test"))
	assert.Equal(t, 0, dst.Len())
}

func TestSubscribe_NotifiesWithOrigin(t *testing.T) {
	d := New()

	var gotUpdate []byte
	var gotOrigin string
	cancel := d.Subscribe(func(update []byte, origin string) {
		gotUpdate = update
		gotOrigin = origin
	})
	defer cancel()

	d.Insert("alpha", "me")

	assert.Equal(t, Fragment("alpha"), gotUpdate)
	assert.Equal(t, "me", gotOrigin)
}

func TestSubscribe_SilentOnDuplicate(t *testing.T) {
	d := New()
	require.NoError(t, d.ApplyUpdate(Fragment("alpha"), "test"))

	fired := 0
	cancel := d.Subscribe(func([]byte, string) { fired++ })
	defer cancel()

	require.NoError(t, d.ApplyUpdate(Fragment("alpha"), "test"))
	assert.Equal(t, 0, fired, "duplicate fragment must not notify")
}

func TestSubscribe_CancelDetaches(t *testing.T) {
	d := New()

	fired := 0
	cancel := d.Subscribe(func([]byte, string) { fired++ })
	cancel()
	cancel() // safe to call twice

	d.Insert("alpha", "")
	assert.Equal(t, 0, fired)
}

func TestSubscribeDestroy(t *testing.T) {
	d := New()

	fired := 0
	cancel := d.SubscribeDestroy(func() { fired++ })
	defer cancel()

	d.Destroy()
	assert.Equal(t, 1, fired)
}
