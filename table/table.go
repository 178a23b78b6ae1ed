// Package table implements the in-memory columnar matrix table: an
// immutable, ordered set of equal-length float64 columns with shape and
// format-version metadata attached.
//
// A table holding a flattened N-dimensional matrix has one row per cell,
// stored row-major, so Product(meta.Shape) equals NumRows for a
// consistent table.
package table

import (
	"fmt"
)

// ErrColumnNotFound indicates a requested column name that the table does
// not contain.
type ErrColumnNotFound struct {
	Name string
}

func (e *ErrColumnNotFound) Error() string {
	return fmt.Sprintf("column not found: %q", e.Name)
}

// ErrRowOutOfRange indicates a take offset outside the table.
type ErrRowOutOfRange struct {
	Offset  int64
	NumRows int
}

func (e *ErrRowOutOfRange) Error() string {
	return fmt.Sprintf("row offset %d out of range [0, %d)", e.Offset, e.NumRows)
}

// ErrColumnLengthMismatch indicates columns of unequal length at
// construction time.
type ErrColumnLengthMismatch struct {
	Name string
	Got  int
	Want int
}

func (e *ErrColumnLengthMismatch) Error() string {
	return fmt.Sprintf("column %q has %d rows, want %d", e.Name, e.Got, e.Want)
}

// Table is an immutable column-oriented container.
type Table struct {
	names   []string
	columns map[string][]float64
	numRows int
	meta    Meta
}

// New creates a table from parallel name and column slices. All columns
// must have the same length. The column slices are retained, not copied;
// callers must not mutate them afterwards.
func New(names []string, columns [][]float64, meta Meta) (*Table, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("table: %d names for %d columns", len(names), len(columns))
	}
	numRows := 0
	if len(columns) > 0 {
		numRows = len(columns[0])
	}
	byName := make(map[string][]float64, len(names))
	for i, name := range names {
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("table: duplicate column %q", name)
		}
		if len(columns[i]) != numRows {
			return nil, &ErrColumnLengthMismatch{Name: name, Got: len(columns[i]), Want: numRows}
		}
		byName[name] = columns[i]
	}
	return &Table{
		names:   append([]string(nil), names...),
		columns: byName,
		numRows: numRows,
		meta:    meta,
	}, nil
}

// Names returns the column names in table order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.numRows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.names) }

// Meta returns the table's shape and version metadata.
func (t *Table) Meta() Meta { return t.meta }

// WithMeta returns a table sharing this table's columns with replacement
// metadata.
func (t *Table) WithMeta(meta Meta) *Table {
	out := *t
	out.meta = meta
	return &out
}

// Column returns the values of a single named column. The returned slice
// is the table's storage; callers must not mutate it.
func (t *Table) Column(name string) ([]float64, error) {
	col, ok := t.columns[name]
	if !ok {
		return nil, &ErrColumnNotFound{Name: name}
	}
	return col, nil
}

// Select returns a table projected to the requested columns, in the
// requested order. A nil request selects every column. Column storage is
// shared with the receiver.
func (t *Table) Select(names []string) (*Table, error) {
	if names == nil {
		return t, nil
	}
	columns := make([][]float64, len(names))
	for i, name := range names {
		col, ok := t.columns[name]
		if !ok {
			return nil, &ErrColumnNotFound{Name: name}
		}
		columns[i] = col
	}
	return New(names, columns, t.meta)
}

// Equal reports whether two tables hold the same columns in the same
// order with identical values and metadata. NaNs compare equal, so a
// round-tripped table with missing cells still equals its source.
func (t *Table) Equal(other *Table) bool {
	if t.numRows != other.numRows || len(t.names) != len(other.names) {
		return false
	}
	if FormatShape(t.meta.Shape) != FormatShape(other.meta.Shape) || t.meta.Version != other.meta.Version {
		return false
	}
	for i, name := range t.names {
		if other.names[i] != name {
			return false
		}
		a, b := t.columns[name], other.columns[name]
		for j := range a {
			if a[j] != b[j] && (a[j] == a[j] || b[j] == b[j]) {
				return false
			}
		}
	}
	return true
}

// Take gathers the specified rows of every column, in offset order.
// Offsets may repeat; each occurrence produces a row. An out-of-range
// offset fails the whole gather.
func (t *Table) Take(offsets []int64) (*Table, error) {
	for _, off := range offsets {
		if off < 0 || off >= int64(t.numRows) {
			return nil, &ErrRowOutOfRange{Offset: off, NumRows: t.numRows}
		}
	}
	columns := make([][]float64, len(t.names))
	for i, name := range t.names {
		src := t.columns[name]
		dst := make([]float64, len(offsets))
		for j, off := range offsets {
			dst[j] = src[off]
		}
		columns[i] = dst
	}
	return New(t.Names(), columns, t.meta)
}
