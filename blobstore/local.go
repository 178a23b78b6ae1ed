package blobstore

import (
	"context"
	"io"
	"path/filepath"

	"github.com/hupe1980/matrixgo/internal/mmap"
)

// LocalStore implements Store over a local directory. Blobs are
// memory-mapped, which suits the random access patterns of matrix gathers.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Open memory-maps the named file under the store root.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	m, err := mmap.Open(filepath.Join(s.root, name))
	if err != nil {
		return nil, err
	}
	return &localBlob{m: m}, nil
}

type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) ReadAt(p []byte, off int64) (int, error) {
	n, err := b.m.ReadAt(p, off)
	if err == mmap.ErrClosed {
		return n, io.EOF
	}
	return n, err
}

func (b *localBlob) Size() int64 { return b.m.Size() }

func (b *localBlob) Bytes() ([]byte, error) { return b.m.Bytes(), nil }

func (b *localBlob) Close() error { return b.m.Close() }
