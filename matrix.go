package matrixgo

import (
	"io"

	"github.com/hupe1980/matrixgo/store"
	"github.com/hupe1980/matrixgo/table"
)

// Matrix is a read handle over a persisted matrix table. It serves whole
// matrices, coordinate gathers, and rectangular blocks without ever
// materializing more columns than a call touches.
//
// A Matrix is safe for concurrent readers on the flat backend; the
// row-group backend serializes reads on its underlying reader.
type Matrix struct {
	store   store.Store
	logger  *Logger
	closers []io.Closer
}

// newMatrix wraps a backend store. Extra closers (e.g. a blob handle the
// store reads through) are released after the store on Close.
func newMatrix(s store.Store, logger *Logger, closers ...io.Closer) *Matrix {
	if logger == nil {
		logger = NoopLogger()
	}
	return &Matrix{store: s, logger: logger, closers: closers}
}

// Shape returns the matrix shape.
func (m *Matrix) Shape() []int {
	return append([]int(nil), m.store.Shape()...)
}

// NDims returns the number of matrix dimensions.
func (m *Matrix) NDims() int { return len(m.store.Shape()) }

// Version returns the schema version tag embedded in the file.
func (m *Matrix) Version() string { return m.store.Version() }

// NumRows returns the number of stored rows (flattened cells).
func (m *Matrix) NumRows() int { return m.store.NumRows() }

// ListMatrices returns the stored matrix names in file order.
func (m *Matrix) ListMatrices() []string { return m.store.Names() }

// HasMatrix reports whether a matrix of the given name is stored.
func (m *Matrix) HasMatrix(name string) bool {
	for _, n := range m.store.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Close releases the underlying file or mapping. On the flat backend,
// uncompressed values returned by GetMatrix and GetRaw alias the mapping
// and become invalid; gathered results (GetRC, Block) are always copies.
func (m *Matrix) Close() error {
	err := m.store.Close()
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Dense is a fully materialized N-dimensional matrix in row-major order.
type Dense struct {
	Shape  []int
	Values []float64
}

// At returns the cell at the given coordinates.
func (d *Dense) At(coords ...int) float64 {
	offset := 0
	for k, c := range coords {
		offset = offset*d.Shape[k] + c
	}
	return d.Values[offset]
}

// Frame is a gathered result: one float64 column per requested matrix,
// with multi-level coordinate labels aligned to the rows.
type Frame struct {
	Labels *Labels
	Table  *table.Table
}

// NumRows returns the number of gathered rows.
func (f *Frame) NumRows() int { return f.Table.NumRows() }

// Column returns one gathered column by matrix name.
func (f *Frame) Column(name string) ([]float64, error) {
	return f.Table.Column(name)
}

// GetMatrix materializes one whole matrix, reshaped to the stored shape.
func (m *Matrix) GetMatrix(name string) (*Dense, error) {
	t, err := m.store.Select([]string{name})
	if err != nil {
		return nil, err
	}
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	return &Dense{Shape: m.Shape(), Values: col}, nil
}

// GetRaw returns one matrix's flattened column without reshaping.
func (m *Matrix) GetRaw(name string) ([]float64, error) {
	t, err := m.store.Select([]string{name})
	if err != nil {
		return nil, err
	}
	return t.Column(name)
}

// GetRC gathers cells at the given coordinates from one or more matrices.
// One Index per dimension; array indexes share a length, scalars
// broadcast. The result carries one row per coordinate tuple, labeled
// with the coordinates.
func (m *Matrix) GetRC(names []string, indexes ...Index) (*Frame, error) {
	offsets, labels, err := TakersWithLabels(m.store.Shape(), indexes...)
	if err != nil {
		return nil, err
	}
	t, err := m.take(names, offsets)
	if err != nil {
		return nil, err
	}
	return &Frame{Labels: labels, Table: t}, nil
}

// GetRCValues is the single-matrix fast path of GetRC: it gathers one
// column and returns the bare values, skipping label construction.
func (m *Matrix) GetRCValues(name string, indexes ...Index) ([]float64, error) {
	offsets, err := Takers(m.store.Shape(), indexes...)
	if err != nil {
		return nil, err
	}
	t, err := m.take([]string{name}, offsets)
	if err != nil {
		return nil, err
	}
	return t.Column(name)
}

// GetRCTable is GetRC returning the unlabeled columnar result.
func (m *Matrix) GetRCTable(names []string, indexes ...Index) (*table.Table, error) {
	offsets, err := Takers(m.store.Shape(), indexes...)
	if err != nil {
		return nil, err
	}
	return m.take(names, offsets)
}

// take gathers rows through the backend's native column gather when it
// has one, else by selecting the columns and taking rows from the result.
func (m *Matrix) take(names []string, offsets []int64) (*table.Table, error) {
	if taker, ok := m.store.(store.Taker); ok {
		return taker.TakeColumns(names, offsets)
	}
	t, err := m.store.Select(names)
	if err != nil {
		return nil, err
	}
	return t.Take(offsets)
}
