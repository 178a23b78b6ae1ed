// Package mmap provides read-only memory mapping of files.
//
// A Mapping owns the mapped region and is responsible for unmapping it on
// Close. Slices derived from Bytes become invalid once the mapping is
// closed; higher-level loaders must keep the mapping alive for as long as
// they hold zero-copy views.
package mmap

import (
	"errors"
	"io"
	"os"
	"sync/atomic"
)

var (
	// ErrClosed is returned when accessing a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the file size is invalid.
	ErrInvalidSize = errors.New("mmap: invalid file size")
)

// Mapping is a read-only memory-mapped file.
type Mapping struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the file at path into memory as read-only.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &Mapping{}, nil
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, unmap: unmap}, nil
}

// Bytes returns the mapped region. The slice is valid until Close.
func (m *Mapping) Bytes() []byte {
	if m == nil || m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the length of the mapped region in bytes.
func (m *Mapping) Size() int64 {
	return int64(len(m.Bytes()))
}

// ReadAt implements io.ReaderAt over the mapped region.
func (m *Mapping) ReadAt(p []byte, off int64) (int, error) {
	if m == nil || m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the region. It is safe to call more than once.
func (m *Mapping) Close() error {
	if m == nil || !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	data := m.data
	m.data = nil
	if data == nil || m.unmap == nil {
		return nil
	}
	return m.unmap(data)
}
