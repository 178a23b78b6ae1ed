package matrixgo

import (
	"fmt"

	"github.com/hupe1980/matrixgo/table"
)

// Source supplies matrices for conversion into a persisted matrix table.
// Implementations pull from wherever the matrices already live (another
// matrix table, memory, a foreign file format); FromSource drains one
// into a backend file.
type Source interface {
	// Shape returns the common shape of every matrix in the source.
	Shape() ([]int, error)
	// MatrixNames lists the available matrices.
	MatrixNames() ([]string, error)
	// Matrix returns one matrix flattened row-major.
	Matrix(name string) ([]float64, error)
}

// LookupSource is an optional Source capability: zone-label lookup
// vectors stored alongside the matrices. A lookup has one entry per
// position along one dimension.
type LookupSource interface {
	// LookupNames lists the available lookups.
	LookupNames() ([]string, error)
	// Lookup returns one lookup vector.
	Lookup(name string) ([]float64, error)
}

// MemorySource is an in-memory Source for building matrix tables
// programmatically. Add calls chain:
//
//	src := matrixgo.NewMemorySource(25, 25).
//	    AddMatrix("SOV_TIME__AM", am).
//	    AddMatrix("SOV_TIME__PM", pm)
type MemorySource struct {
	shape       []int
	names       []string
	matrices    map[string][]float64
	lookupNames []string
	lookups     map[string][]float64
	err         error
}

var (
	_ Source       = (*MemorySource)(nil)
	_ LookupSource = (*MemorySource)(nil)
)

// NewMemorySource creates an empty source of the given shape.
func NewMemorySource(shape ...int) *MemorySource {
	return &MemorySource{
		shape:    append([]int(nil), shape...),
		matrices: make(map[string][]float64),
		lookups:  make(map[string][]float64),
	}
}

// AddMatrix adds a flattened row-major matrix. Its length must equal the
// product of the source shape; a mismatch is reported by the next Source
// method call.
func (s *MemorySource) AddMatrix(name string, values []float64) *MemorySource {
	if s.err != nil {
		return s
	}
	if want := table.Product(s.shape); len(values) != want {
		s.err = fmt.Errorf("matrixgo: matrix %q has %d cells, shape %s needs %d",
			name, len(values), table.FormatShape(s.shape), want)
		return s
	}
	if _, dup := s.matrices[name]; dup {
		s.err = fmt.Errorf("matrixgo: duplicate matrix %q", name)
		return s
	}
	s.names = append(s.names, name)
	s.matrices[name] = values
	return s
}

// AddLookup adds a zone-label lookup vector for one dimension.
func (s *MemorySource) AddLookup(name string, values []float64) *MemorySource {
	if s.err != nil {
		return s
	}
	if _, dup := s.lookups[name]; dup {
		s.err = fmt.Errorf("matrixgo: duplicate lookup %q", name)
		return s
	}
	s.lookupNames = append(s.lookupNames, name)
	s.lookups[name] = values
	return s
}

// Shape returns the source shape.
func (s *MemorySource) Shape() ([]int, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]int(nil), s.shape...), nil
}

// MatrixNames lists the added matrices in insertion order.
func (s *MemorySource) MatrixNames() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]string(nil), s.names...), nil
}

// Matrix returns one added matrix.
func (s *MemorySource) Matrix(name string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	vals, ok := s.matrices[name]
	if !ok {
		return nil, &table.ErrColumnNotFound{Name: name}
	}
	return vals, nil
}

// LookupNames lists the added lookups in insertion order.
func (s *MemorySource) LookupNames() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]string(nil), s.lookupNames...), nil
}

// Lookup returns one added lookup.
func (s *MemorySource) Lookup(name string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	vals, ok := s.lookups[name]
	if !ok {
		return nil, &table.ErrColumnNotFound{Name: name}
	}
	return vals, nil
}

// TableFromSource drains a source into an in-memory matrix table,
// restricted to the named matrices (all of them when names is nil).
func TableFromSource(src Source, names []string) (*table.Table, error) {
	shape, err := src.Shape()
	if err != nil {
		return nil, err
	}
	if names == nil {
		names, err = src.MatrixNames()
		if err != nil {
			return nil, err
		}
	}

	columns := make([][]float64, len(names))
	for i, name := range names {
		columns[i], err = src.Matrix(name)
		if err != nil {
			return nil, err
		}
	}
	return table.New(names, columns, table.NewMeta(shape...))
}

// LookupTableFromSource drains a source's lookup vectors into a table.
// Lookups span one dimension, so the table carries a 1-d shape.
func LookupTableFromSource(src LookupSource) (*table.Table, error) {
	names, err := src.LookupNames()
	if err != nil {
		return nil, err
	}

	columns := make([][]float64, len(names))
	for i, name := range names {
		columns[i], err = src.Lookup(name)
		if err != nil {
			return nil, err
		}
	}
	numRows := 0
	if len(columns) > 0 {
		numRows = len(columns[0])
	}
	return table.New(names, columns, table.NewMeta(numRows))
}
