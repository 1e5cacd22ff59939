// Package filesystem implements blob storage backed by a local directory.
//
// Each key maps to one file under the configured root; "/" separated key
// segments become subdirectories. Writes go through a temp file plus rename
// so a crashed write never leaves a partially written object behind.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/marmos91/depot/pkg/store/blob"
)

// FilesystemBlobStore is a local-directory implementation of blob.BlobStore.
type FilesystemBlobStore struct {
	root string
}

// NewFilesystemBlobStore creates a blob store rooted at the given directory.
// The directory is created if it does not exist.
func NewFilesystemBlobStore(root string) (*FilesystemBlobStore, error) {
	if root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob root %q: %w", root, err)
	}
	return &FilesystemBlobStore{root: root}, nil
}

// path maps a key to its on-disk location, rejecting keys that would
// escape the root directory.
func (s *FilesystemBlobStore) path(key blob.Key) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(string(key)))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.root, cleaned), nil
}

// Exists reports whether the key is present.
func (s *FilesystemBlobStore) Exists(ctx context.Context, key blob.Key) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	p, err := s.path(key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}
	return !info.IsDir(), nil
}

// Get returns the full object for the key.
func (s *FilesystemBlobStore) Get(ctx context.Context, key blob.Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, blob.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}
	return data, nil
}

// Put stores the object under the key. The write is atomic: data lands in a
// temp file in the same directory and is renamed over the final path, so
// concurrent readers always observe either the old or the new object.
func (s *FilesystemBlobStore) Put(ctx context.Context, key blob.Key, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".blob-*")
	if err != nil {
		return fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}

	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}
	return nil
}

// List returns all keys with the given prefix in lexicographic order.
func (s *FilesystemBlobStore) List(ctx context.Context, prefix blob.Key) ([]blob.Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keys []blob.Key
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		// Skip in-flight temp files
		if strings.HasPrefix(d.Name(), ".blob-") {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := blob.Key(filepath.ToSlash(rel))
		if strings.HasPrefix(string(key), string(prefix)) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}
