package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/depot/pkg/store/blob"
)

func newTestStore(t *testing.T) *BadgerBlobStore {
	t.Helper()

	store, err := NewBadgerBlobStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerBlobStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Put(ctx, "_credentials.yaml", []byte("type: credentials\n")))

	data, err := store.Get(ctx, "_credentials.yaml")
	require.NoError(t, err)
	assert.Equal(t, []byte("type: credentials\n"), data)

	ok, err := store.Exists(ctx, "_credentials.yaml")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBadgerBlobStore_Missing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, blob.ErrNotFound)

	ok, err := store.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBadgerBlobStore_List(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Put(ctx, "cfg/b", []byte("1")))
	require.NoError(t, store.Put(ctx, "cfg/a", []byte("2")))
	require.NoError(t, store.Put(ctx, "other", []byte("3")))

	keys, err := store.List(ctx, "cfg/")
	require.NoError(t, err)
	assert.Equal(t, []blob.Key{"cfg/a", "cfg/b"}, keys)
}

func TestBadgerBlobStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Put(ctx, "key", []byte("one")))
	require.NoError(t, store.Put(ctx, "key", []byte("two")))

	data, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
}
