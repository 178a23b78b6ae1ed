package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/matrixgo/internal/block"
	"github.com/hupe1980/matrixgo/internal/conv"
	"github.com/hupe1980/matrixgo/table"
)

const (
	rowGroupPreambleSize = 8 // magic + version
	rowGroupTrailerSize  = 8 // footer length + magic
)

type chunkEntry struct {
	Offset int64 `json:"offset"`
	Size   int64 `json:"size"`
}

type rowGroupEntry struct {
	NumRows int `json:"num_rows"`
	// Chunks is parallel to the footer's Names.
	Chunks []chunkEntry `json:"chunks"`
}

type rowGroupFooter struct {
	Metadata     map[string]string `json:"metadata"`
	Codec        string            `json:"codec"`
	NumRows      int               `json:"num_rows"`
	RowGroupRows int               `json:"row_group_rows"`
	Names        []string          `json:"names"`
	RowGroups    []rowGroupEntry   `json:"row_groups"`
}

// RowGroupStore reads the row-group backend: rows are split into fixed-size
// groups and every (group, column) chunk is an independently compressed
// block, so reads touch only the requested columns' chunks. Gathers prune
// to the row groups the offsets fall into.
type RowGroupStore struct {
	r      io.ReaderAt
	closer io.Closer
	footer rowGroupFooter
	codec  block.Codec
	colIdx map[string]int
	meta   table.Meta
}

var (
	_ Store = (*RowGroupStore)(nil)
	_ Taker = (*RowGroupStore)(nil)
)

// OpenRowGroup opens the row-group matrix table at path. Only the footer is
// read eagerly; chunk data is read on demand.
func OpenRowGroup(path string, optFns ...Option) (*RowGroupStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	s, err := openRowGroup(f, fi.Size(), f, applyOptions(optFns))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return s, nil
}

// OpenRowGroupBuffer opens a row-group matrix table held in memory.
func OpenRowGroupBuffer(data []byte, optFns ...Option) (*RowGroupStore, error) {
	return openRowGroup(bytes.NewReader(data), int64(len(data)), nil, applyOptions(optFns))
}

// OpenRowGroupReader opens a row-group matrix table over an arbitrary
// reader, e.g. a blobstore blob served by ranged reads. The reader must
// stay open for the store's lifetime; the store's Close does not close it.
func OpenRowGroupReader(r io.ReaderAt, size int64, optFns ...Option) (*RowGroupStore, error) {
	return openRowGroup(r, size, nil, applyOptions(optFns))
}

func openRowGroup(r io.ReaderAt, size int64, closer io.Closer, o Options) (*RowGroupStore, error) {
	if size < rowGroupPreambleSize+rowGroupTrailerSize {
		return nil, fmt.Errorf("store: row-group file truncated: %d bytes", size)
	}

	preamble := make([]byte, rowGroupPreambleSize)
	if _, err := r.ReadAt(preamble, 0); err != nil {
		return nil, err
	}
	if magic := binary.LittleEndian.Uint32(preamble[0:]); magic != magicRowGroup {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, magic)
	}
	if version := binary.LittleEndian.Uint32(preamble[4:]); version != formatVersion {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, version)
	}

	trailer := make([]byte, rowGroupTrailerSize)
	if _, err := r.ReadAt(trailer, size-rowGroupTrailerSize); err != nil {
		return nil, err
	}
	if magic := binary.LittleEndian.Uint32(trailer[4:]); magic != magicRowGroup {
		return nil, fmt.Errorf("%w: bad trailer 0x%08x", ErrInvalidMagic, magic)
	}
	footerLen := int64(binary.LittleEndian.Uint32(trailer[0:]))
	footerOffset := size - rowGroupTrailerSize - footerLen
	if footerLen <= 0 || footerOffset < rowGroupPreambleSize {
		return nil, fmt.Errorf("store: row-group footer out of bounds")
	}

	footerBytes := make([]byte, footerLen)
	if _, err := r.ReadAt(footerBytes, footerOffset); err != nil {
		return nil, err
	}
	var footer rowGroupFooter
	if err := json.Unmarshal(footerBytes, &footer); err != nil {
		return nil, fmt.Errorf("store: row-group footer: %w", err)
	}
	if footer.RowGroupRows <= 0 {
		return nil, fmt.Errorf("store: invalid row-group size %d", footer.RowGroupRows)
	}
	codec, err := block.CodecByName(footer.Codec)
	if err != nil {
		return nil, err
	}

	if footer.NumRows < 0 {
		return nil, fmt.Errorf("store: negative row count %d", footer.NumRows)
	}
	rowSum := 0
	for g, group := range footer.RowGroups {
		if len(group.Chunks) != len(footer.Names) {
			return nil, fmt.Errorf("store: row group %d has %d chunks for %d columns",
				g, len(group.Chunks), len(footer.Names))
		}
		if group.NumRows < 0 {
			return nil, fmt.Errorf("store: row group %d has negative row count %d", g, group.NumRows)
		}
		rowSum += group.NumRows
	}
	if rowSum != footer.NumRows {
		return nil, fmt.Errorf("store: row groups cover %d rows, footer says %d", rowSum, footer.NumRows)
	}

	meta, err := resolveMeta(footer.Metadata, footer.NumRows, o)
	if err != nil {
		return nil, err
	}

	colIdx := make(map[string]int, len(footer.Names))
	for i, name := range footer.Names {
		colIdx[name] = i
	}

	return &RowGroupStore{
		r:      r,
		closer: closer,
		footer: footer,
		codec:  codec,
		colIdx: colIdx,
		meta:   meta,
	}, nil
}

// Names returns the column names in file order.
func (s *RowGroupStore) Names() []string { return append([]string(nil), s.footer.Names...) }

// Shape returns the matrix shape.
func (s *RowGroupStore) Shape() []int { return append([]int(nil), s.meta.Shape...) }

// Version returns the embedded format-version tag.
func (s *RowGroupStore) Version() string { return s.meta.Version }

// NumRows returns the stored row count.
func (s *RowGroupStore) NumRows() int { return s.footer.NumRows }

func (s *RowGroupStore) columnIndices(names []string) ([]string, []int, error) {
	if names == nil {
		names = s.footer.Names
	}
	indices := make([]int, len(names))
	for i, name := range names {
		idx, ok := s.colIdx[name]
		if !ok {
			return nil, nil, &table.ErrColumnNotFound{Name: name}
		}
		indices[i] = idx
	}
	return names, indices, nil
}

func (s *RowGroupStore) readChunk(ch chunkEntry) ([]float64, error) {
	buf := make([]byte, ch.Size)
	if _, err := s.r.ReadAt(buf, ch.Offset); err != nil {
		return nil, err
	}
	payload, err := block.Decompress(buf, s.codec)
	if err != nil {
		return nil, err
	}
	vals, err := conv.BytesAsFloat64s(payload)
	if err != nil {
		return conv.DecodeFloat64s(payload)
	}
	return vals, nil
}

// Select reads the requested columns, all columns when names is nil. Only
// the chunks belonging to the requested columns are read; chunks decode
// concurrently.
func (s *RowGroupStore) Select(names []string) (*table.Table, error) {
	names, indices, err := s.columnIndices(names)
	if err != nil {
		return nil, err
	}

	columns := make([][]float64, len(names))
	for i := range columns {
		columns[i] = make([]float64, s.footer.NumRows)
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	rowStart := 0
	for _, group := range s.footer.RowGroups {
		start := rowStart
		for i, idx := range indices {
			chunk := group.Chunks[idx]
			dst := columns[i][start : start+group.NumRows]
			g.Go(func() error {
				vals, err := s.readChunk(chunk)
				if err != nil {
					return err
				}
				if len(vals) != len(dst) {
					return fmt.Errorf("store: chunk has %d rows, want %d", len(vals), len(dst))
				}
				copy(dst, vals)
				return nil
			})
		}
		rowStart += group.NumRows
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return table.New(names, columns, s.meta)
}

// TakeColumns gathers the given row offsets for the requested columns,
// reading only the row groups the offsets fall into. Offset order is
// preserved and duplicates are allowed.
func (s *RowGroupStore) TakeColumns(names []string, offsets []int64) (*table.Table, error) {
	names, indices, err := s.columnIndices(names)
	if err != nil {
		return nil, err
	}

	groupRows := int64(s.footer.RowGroupRows)
	touched := roaring.New()
	for _, off := range offsets {
		if off < 0 || off >= int64(s.footer.NumRows) {
			return nil, &table.ErrRowOutOfRange{Offset: off, NumRows: s.footer.NumRows}
		}
		touched.Add(uint32(off / groupRows))
	}

	// group id -> column position -> chunk values
	loaded := make(map[uint32][][]float64, touched.GetCardinality())
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	it := touched.Iterator()
	for it.HasNext() {
		gid := it.Next()
		chunks := make([][]float64, len(indices))
		loaded[gid] = chunks
		for i, idx := range indices {
			chunk := s.footer.RowGroups[gid].Chunks[idx]
			g.Go(func() error {
				vals, err := s.readChunk(chunk)
				if err != nil {
					return err
				}
				chunks[i] = vals
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	columns := make([][]float64, len(names))
	for i := range columns {
		columns[i] = make([]float64, len(offsets))
	}
	for j, off := range offsets {
		gid := uint32(off / groupRows)
		local := int(off % groupRows)
		for i := range columns {
			columns[i][j] = loaded[gid][i][local]
		}
	}
	return table.New(names, columns, s.meta)
}

// Close releases the underlying file.
func (s *RowGroupStore) Close() error {
	if s.closer != nil {
		closer := s.closer
		s.closer = nil
		return closer.Close()
	}
	return nil
}

// WriteRowGroup persists a table in the row-group format, splitting rows
// into WithRowGroupRows-sized groups. A table with no shape (and no
// WithShape override) fails with ErrMissingShape.
func WriteRowGroup(w io.Writer, t *table.Table, optFns ...Option) error {
	o := applyOptions(optFns)

	meta := t.Meta()
	if len(o.Shape) > 0 {
		meta.Shape = o.Shape
	}
	if !meta.HasShape() {
		return ErrMissingShape
	}

	names := t.Names()
	footer := rowGroupFooter{
		Metadata:     schemaMetadata(meta),
		Codec:        o.Codec.String(),
		NumRows:      t.NumRows(),
		RowGroupRows: o.RowGroupRows,
		Names:        names,
	}

	preamble := make([]byte, rowGroupPreambleSize)
	binary.LittleEndian.PutUint32(preamble[0:], magicRowGroup)
	binary.LittleEndian.PutUint32(preamble[4:], formatVersion)
	if _, err := w.Write(preamble); err != nil {
		return err
	}

	offset := int64(rowGroupPreambleSize)
	for rowStart := 0; rowStart < t.NumRows() || rowStart == 0; rowStart += o.RowGroupRows {
		groupRows := min(o.RowGroupRows, t.NumRows()-rowStart)
		entry := rowGroupEntry{
			NumRows: groupRows,
			Chunks:  make([]chunkEntry, len(names)),
		}
		for i, name := range names {
			col, err := t.Column(name)
			if err != nil {
				return err
			}
			raw := conv.Float64sAsBytes(col[rowStart : rowStart+groupRows])
			framed, err := block.Compress(raw, block.Codec(o.Codec))
			if err != nil {
				return err
			}
			if _, err := w.Write(framed); err != nil {
				return err
			}
			entry.Chunks[i] = chunkEntry{Offset: offset, Size: int64(len(framed))}
			offset += int64(len(framed))
		}
		footer.RowGroups = append(footer.RowGroups, entry)
		if t.NumRows() == 0 {
			break
		}
	}

	footerBytes, err := json.Marshal(footer)
	if err != nil {
		return err
	}
	if _, err := w.Write(footerBytes); err != nil {
		return err
	}

	trailer := make([]byte, rowGroupTrailerSize)
	footerLen, err := conv.IntToUint32(len(footerBytes))
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(trailer[0:], footerLen)
	binary.LittleEndian.PutUint32(trailer[4:], magicRowGroup)
	_, err = w.Write(trailer)
	return err
}

// WriteRowGroupFile persists a table to path atomically.
func WriteRowGroupFile(path string, t *table.Table, optFns ...Option) error {
	return saveToFile(path, func(w io.Writer) error {
		return WriteRowGroup(w, t, optFns...)
	})
}
