package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/hupe1980/matrixgo/internal/block"
	"github.com/hupe1980/matrixgo/internal/conv"
	"github.com/hupe1980/matrixgo/internal/mmap"
	"github.com/hupe1980/matrixgo/table"
)

const (
	// magicFlat identifies flat matrix table files (ASCII "MTF0").
	magicFlat = 0x4D544630
	// magicRowGroup identifies row-group matrix table files (ASCII "MTG0").
	magicRowGroup = 0x4D544730
	// formatVersion is the current on-disk format version (v1.0).
	formatVersion = 0x00010000

	flatHeaderSize = 64
)

// flatHeader is the fixed 64-byte header at the start of every flat file.
type flatHeader struct {
	Magic       uint32
	Version     uint32
	ColumnCount uint32
	Flags       uint32
	NumRows     uint64
	DataOffset  uint64 // start of the bundled data section
	DirOffset   uint64 // start of the JSON directory
	DirSize     uint64
	Checksum    uint32 // CRC32 (IEEE) of the data section
	Reserved    [12]byte
}

type flatColumn struct {
	Name   string `json:"name"`
	Offset uint64 `json:"offset"` // absolute offset of the framed block
	Size   uint64 `json:"size"`   // framed block size
}

type flatDirectory struct {
	Columns  []flatColumn      `json:"columns"`
	Metadata map[string]string `json:"metadata"`
	Codec    string            `json:"codec"`
}

// FlatStore reads the flat backend: one bundled data section holding every
// column, memory-mapped and checksummed, with a JSON directory at the tail.
// Uncompressed columns are served as zero-copy views over the mapping.
type FlatStore struct {
	data    []byte
	closer  io.Closer // nil for buffer-backed stores
	codec   block.Codec
	names   []string
	byName  map[string]flatColumn
	meta    table.Meta
	numRows int
}

var _ Store = (*FlatStore)(nil)

// OpenFlat memory-maps the flat matrix table at path.
func OpenFlat(path string, optFns ...Option) (*FlatStore, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	s, err := openFlat(m.Bytes(), m, applyOptions(optFns))
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	return s, nil
}

// OpenFlatBuffer opens a flat matrix table held in memory. The buffer is
// aliased, not copied; it must stay alive while the store is in use.
func OpenFlatBuffer(data []byte, optFns ...Option) (*FlatStore, error) {
	return openFlat(data, nil, applyOptions(optFns))
}

func openFlat(data []byte, closer io.Closer, o Options) (*FlatStore, error) {
	if len(data) < flatHeaderSize {
		return nil, fmt.Errorf("store: flat file truncated: %d bytes", len(data))
	}

	var h flatHeader
	if err := binary.Read(bytes.NewReader(data[:flatHeaderSize]), binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if h.Magic != magicFlat {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != formatVersion {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, h.Version)
	}
	if h.DataOffset > h.DirOffset || h.DirOffset+h.DirSize > uint64(len(data)) {
		return nil, fmt.Errorf("store: flat directory out of bounds")
	}

	if sum := crc32.ChecksumIEEE(data[h.DataOffset:h.DirOffset]); sum != h.Checksum {
		return nil, fmt.Errorf("store: data checksum mismatch: expected 0x%08x, got 0x%08x", h.Checksum, sum)
	}

	var dir flatDirectory
	if err := json.Unmarshal(data[h.DirOffset:h.DirOffset+h.DirSize], &dir); err != nil {
		return nil, fmt.Errorf("store: flat directory: %w", err)
	}
	codec, err := block.CodecByName(dir.Codec)
	if err != nil {
		return nil, err
	}

	numRows, err := conv.Uint64ToInt(h.NumRows)
	if err != nil {
		return nil, err
	}
	meta, err := resolveMeta(dir.Metadata, numRows, o)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(dir.Columns))
	byName := make(map[string]flatColumn, len(dir.Columns))
	for i, col := range dir.Columns {
		if col.Offset+col.Size > uint64(len(data)) {
			return nil, fmt.Errorf("store: column %q out of bounds", col.Name)
		}
		names[i] = col.Name
		byName[col.Name] = col
	}

	return &FlatStore{
		data:    data,
		closer:  closer,
		codec:   codec,
		names:   names,
		byName:  byName,
		meta:    meta,
		numRows: numRows,
	}, nil
}

// Names returns the column names in file order.
func (s *FlatStore) Names() []string { return append([]string(nil), s.names...) }

// Shape returns the matrix shape.
func (s *FlatStore) Shape() []int { return append([]int(nil), s.meta.Shape...) }

// Version returns the embedded format-version tag.
func (s *FlatStore) Version() string { return s.meta.Version }

// NumRows returns the stored row count.
func (s *FlatStore) NumRows() int { return s.numRows }

// Select returns the requested columns, all columns when names is nil.
// Uncompressed columns alias the mapping; they are valid until Close.
func (s *FlatStore) Select(names []string) (*table.Table, error) {
	if names == nil {
		names = s.names
	}
	columns := make([][]float64, len(names))
	for i, name := range names {
		col, err := s.column(name)
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}
	return table.New(names, columns, s.meta)
}

func (s *FlatStore) column(name string) ([]float64, error) {
	entry, ok := s.byName[name]
	if !ok {
		return nil, &table.ErrColumnNotFound{Name: name}
	}
	payload, err := block.Decompress(s.data[entry.Offset:entry.Offset+entry.Size], s.codec)
	if err != nil {
		return nil, fmt.Errorf("store: column %q: %w", name, err)
	}
	vals, err := conv.BytesAsFloat64s(payload)
	if err != nil {
		// Misaligned payloads lose zero-copy but still decode.
		return conv.DecodeFloat64s(payload)
	}
	return vals, nil
}

// Close unmaps the file. Zero-copy column views become invalid.
func (s *FlatStore) Close() error {
	s.data = nil
	if s.closer != nil {
		closer := s.closer
		s.closer = nil
		return closer.Close()
	}
	return nil
}

// WriteFlat persists a table in the flat format. The table's metadata (or
// a WithShape override) supplies the shape; writing a table with no shape
// fails with ErrMissingShape.
func WriteFlat(w io.Writer, t *table.Table, optFns ...Option) error {
	o := applyOptions(optFns)

	meta := t.Meta()
	if len(o.Shape) > 0 {
		meta.Shape = o.Shape
	}
	if !meta.HasShape() {
		return ErrMissingShape
	}

	names := t.Names()
	dir := flatDirectory{
		Columns:  make([]flatColumn, 0, len(names)),
		Metadata: schemaMetadata(meta),
		Codec:    o.Codec.String(),
	}

	crc := crc32.NewIEEE()
	blocks := make([][]byte, 0, len(names))
	offset := uint64(flatHeaderSize)
	for _, name := range names {
		col, err := t.Column(name)
		if err != nil {
			return err
		}
		framed, err := block.Compress(conv.Float64sAsBytes(col), block.Codec(o.Codec))
		if err != nil {
			return err
		}
		if _, err := crc.Write(framed); err != nil {
			return err
		}
		dir.Columns = append(dir.Columns, flatColumn{
			Name:   name,
			Offset: offset,
			Size:   uint64(len(framed)),
		})
		blocks = append(blocks, framed)
		offset += uint64(len(framed))
	}

	dirBytes, err := json.Marshal(dir)
	if err != nil {
		return err
	}

	numCols, err := conv.IntToUint32(len(names))
	if err != nil {
		return err
	}
	h := flatHeader{
		Magic:       magicFlat,
		Version:     formatVersion,
		ColumnCount: numCols,
		NumRows:     uint64(t.NumRows()),
		DataOffset:  flatHeaderSize,
		DirOffset:   offset,
		DirSize:     uint64(len(dirBytes)),
		Checksum:    crc.Sum32(),
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	for _, b := range blocks {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	_, err = w.Write(dirBytes)
	return err
}

// WriteFlatFile persists a table to path atomically (temp file + rename).
func WriteFlatFile(path string, t *table.Table, optFns ...Option) error {
	return saveToFile(path, func(w io.Writer) error {
		return WriteFlat(w, t, optFns...)
	})
}
