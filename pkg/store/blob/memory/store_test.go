package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/depot/pkg/store/blob"
)

func TestMemoryBlobStore_GetPut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, blob.ErrNotFound)

	require.NoError(t, store.Put(ctx, "key", []byte("value")))

	data, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), data)

	ok, err := store.Exists(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryBlobStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()

	require.NoError(t, store.Put(ctx, "key", []byte("one")))
	require.NoError(t, store.Put(ctx, "key", []byte("two")))

	data, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
}

func TestMemoryBlobStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()

	require.NoError(t, store.Put(ctx, "key", []byte("abc")))

	data, err := store.Get(ctx, "key")
	require.NoError(t, err)
	data[0] = 'x'

	again, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryBlobStore_List(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()

	require.NoError(t, store.Put(ctx, "b/2", nil))
	require.NoError(t, store.Put(ctx, "a/1", nil))
	require.NoError(t, store.Put(ctx, "b/1", nil))

	keys, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []blob.Key{"a/1", "b/1", "b/2"}, keys)

	keys, err = store.List(ctx, "b/")
	require.NoError(t, err)
	assert.Equal(t, []blob.Key{"b/1", "b/2"}, keys)
}

func TestMemoryBlobStore_CancelledContext(t *testing.T) {
	store := NewMemoryBlobStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, "key")
	assert.ErrorIs(t, err, context.Canceled)

	err = store.Put(ctx, "key", []byte("v"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryBlobStore_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Put(ctx, "shared", []byte("payload"))
			_, _ = store.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	data, err := store.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}
