// Package blob defines the object storage contract consumed by the
// credential subsystem and other control-plane components.
//
// A BlobStore is a flat, asynchronous key/value object store. It is
// deliberately minimal: whole-object get/put semantics, no compare-and-swap,
// no partial writes. Higher layers that need stronger consistency must build
// it on top (or accept last-writer-wins, as the credential store does).
//
// Design Principles:
//   - Storage-agnostic: works with memory, local filesystem, S3, Badger
//   - Context-aware: all operations respect context cancellation and timeouts
//   - Consistent error handling: absence is always ErrNotFound, never a nil blob
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
// Concurrent Put calls on the same key resolve last-writer-wins; a failed
// Put leaves the previous object intact (objects are replaced atomically,
// never patched in place).
package blob

import (
	"context"
	"errors"
)

// Common errors for BlobStore operations.
var (
	// ErrNotFound indicates the requested key does not exist.
	ErrNotFound = errors.New("blob not found")

	// ErrUnavailable indicates the backend could not be reached or failed.
	// Backend errors are wrapped with this sentinel so callers can
	// distinguish outages from absence without inspecting backend types.
	ErrUnavailable = errors.New("blob store unavailable")
)

// Key identifies an object within a BlobStore.
//
// Keys are opaque to the store but conventionally use "/" separated path
// segments (e.g. "_credentials.yaml", "repo/maven/metadata.xml").
type Key string

// String returns the key as a plain string.
func (k Key) String() string {
	return string(k)
}

// BlobStore provides whole-object storage operations.
//
// All operations are synchronous from the caller's perspective but may block
// on network I/O; cancellation of ctx must abort the underlying request when
// the backend supports it.
type BlobStore interface {
	// Exists reports whether the key is present.
	Exists(ctx context.Context, key Key) (bool, error)

	// Get returns the full object for the key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Put stores the full object under the key, replacing any previous
	// object. Last writer wins; there is no conditional put.
	Put(ctx context.Context, key Key, data []byte) error

	// List returns all keys with the given prefix in lexicographic order.
	List(ctx context.Context, prefix Key) ([]Key, error)
}
