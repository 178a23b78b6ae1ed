package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/matrixgo/table"
)

// Format identifies a backend's on-disk encoding.
type Format uint8

const (
	// FormatFlat is the memory-mapped whole-file backend.
	FormatFlat Format = iota + 1
	// FormatRowGroup is the chunked, column-pruned backend.
	FormatRowGroup
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatFlat:
		return "flat"
	case FormatRowGroup:
		return "rowgroup"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// DetectFormat sniffs the backend format from a file's leading magic.
func DetectFormat(r io.ReaderAt) (Format, error) {
	head := make([]byte, 4)
	if _, err := r.ReadAt(head, 0); err != nil {
		return 0, err
	}
	switch binary.LittleEndian.Uint32(head) {
	case magicFlat:
		return FormatFlat, nil
	case magicRowGroup:
		return FormatRowGroup, nil
	default:
		return 0, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, binary.LittleEndian.Uint32(head))
	}
}

// Open opens a persisted matrix table, sniffing the backend by magic.
func Open(path string, optFns ...Option) (Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	format, err := DetectFormat(f)
	_ = f.Close()
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatFlat:
		return OpenFlat(path, optFns...)
	default:
		return OpenRowGroup(path, optFns...)
	}
}

// OpenBuffer opens an in-memory matrix table, sniffing the backend by magic.
func OpenBuffer(data []byte, optFns ...Option) (Store, error) {
	format, err := DetectFormat(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatFlat:
		return OpenFlatBuffer(data, optFns...)
	default:
		return OpenRowGroupBuffer(data, optFns...)
	}
}

// Write persists a table in the given format.
func Write(w io.Writer, format Format, t *table.Table, optFns ...Option) error {
	switch format {
	case FormatFlat:
		return WriteFlat(w, t, optFns...)
	case FormatRowGroup:
		return WriteRowGroup(w, t, optFns...)
	default:
		return fmt.Errorf("store: unknown format %s", format)
	}
}

// WriteFile persists a table to path atomically in the given format.
func WriteFile(path string, format Format, t *table.Table, optFns ...Option) error {
	return saveToFile(path, func(w io.Writer) error {
		return Write(w, format, t, optFns...)
	})
}
