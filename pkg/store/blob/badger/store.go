// Package badger implements blob storage backed by a local Badger key/value
// database. Unlike the filesystem backend it keeps every object in one
// directory-backed LSM tree, which suits deployments with many small
// control-plane blobs.
package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/depot/pkg/store/blob"
)

// BadgerBlobStore is a Badger-backed implementation of blob.BlobStore.
//
// Thread Safety:
// Badger transactions provide snapshot isolation per operation; the store
// itself carries no extra locking.
type BadgerBlobStore struct {
	db *badger.DB
}

// NewBadgerBlobStore opens (or creates) a Badger database at the given path.
// The caller owns the returned store and must Close it on shutdown.
func NewBadgerBlobStore(path string) (*BadgerBlobStore, error) {
	if path == "" {
		return nil, fmt.Errorf("badger path is required")
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logger is too chatty for a control-plane store

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %q: %w", path, err)
	}

	return &BadgerBlobStore{db: db}, nil
}

// Close releases the underlying database. The store must not be used after
// Close returns.
func (s *BadgerBlobStore) Close() error {
	return s.db.Close()
}

// Exists reports whether the key is present.
func (s *BadgerBlobStore) Exists(ctx context.Context, key blob.Key) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}
	return found, nil
}

// Get returns the full object for the key.
func (s *BadgerBlobStore) Get(ctx context.Context, key blob.Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, blob.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}
	return data, nil
}

// Put stores the full object under the key.
func (s *BadgerBlobStore) Put(ctx context.Context, key blob.Key, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}
	return nil
}

// List returns all keys with the given prefix in lexicographic order.
func (s *BadgerBlobStore) List(ctx context.Context, prefix blob.Key) ([]blob.Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keys []blob.Key
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // keys only
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, blob.Key(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}
