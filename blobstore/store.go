// Package blobstore abstracts where persisted matrix tables live: the
// local filesystem, process memory, or S3-compatible object storage (see
// the minio subpackage).
//
// Matrix table files are written once and never mutated, so blobs are
// read-only handles.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error satisfying
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for accessing immutable matrix table blobs.
type Store interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is an optional interface for Blobs whose contents are already
// in memory. Bytes is zero-copy; the slice is valid until the Blob is
// closed.
type Mappable interface {
	Bytes() ([]byte, error)
}

// ReadAll returns the blob's full contents, using the zero-copy path when
// the blob supports it.
func ReadAll(b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		return m.Bytes()
	}
	data := make([]byte, b.Size())
	if _, err := b.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return data, nil
}
