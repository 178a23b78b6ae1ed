package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store, primarily for tests and for handing
// buffer-built matrix tables to code written against the Store interface.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Put stores data under name. The slice is retained, not copied.
func (s *MemoryStore) Put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = data
}

// Open returns a read-only handle over the named blob.
func (s *MemoryStore) Open(_ context.Context, name string) (Blob, error) {
	s.mu.RLock()
	data, ok := s.blobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("blob %q: %w", name, ErrNotFound)
	}
	return &memBlob{r: bytes.NewReader(data), data: data}, nil
}

type memBlob struct {
	r    *bytes.Reader
	data []byte
}

func (b *memBlob) ReadAt(p []byte, off int64) (int, error) { return b.r.ReadAt(p, off) }

func (b *memBlob) Size() int64 { return int64(len(b.data)) }

func (b *memBlob) Bytes() ([]byte, error) { return b.data, nil }

func (b *memBlob) Close() error { return nil }
