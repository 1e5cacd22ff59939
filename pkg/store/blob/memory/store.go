// Package memory provides an in-memory implementation of the BlobStore
// interface. This implementation is for testing and development only - all
// data is lost on restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/depot/pkg/store/blob"
)

// MemoryBlobStore is an in-memory implementation of blob.BlobStore.
// It is thread-safe but ephemeral.
type MemoryBlobStore struct {
	mu      sync.RWMutex
	objects map[blob.Key][]byte
}

// NewMemoryBlobStore creates a new empty in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		objects: make(map[blob.Key][]byte),
	}
}

// Exists reports whether the key is present.
func (s *MemoryBlobStore) Exists(ctx context.Context, key blob.Key) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.objects[key]
	return ok, nil
}

// Get returns a copy of the object stored under key.
func (s *MemoryBlobStore) Get(ctx context.Context, key blob.Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, blob.ErrNotFound
	}

	// Copy to prevent external mutation of stored bytes
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Put stores a copy of data under key, replacing any previous object.
func (s *MemoryBlobStore) Put(ctx context.Context, key blob.Key, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = stored
	return nil
}

// List returns all keys with the given prefix in lexicographic order.
func (s *MemoryBlobStore) List(ctx context.Context, prefix blob.Key) ([]blob.Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]blob.Key, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(string(k), string(prefix)) {
			keys = append(keys, k)
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}
