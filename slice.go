package matrixgo

import (
	"fmt"
	"math"
)

// Span selects a run of positions along one dimension, with slice
// semantics: Start inclusive, Stop exclusive, negative bounds counted
// from the end, out-of-range bounds clamped.
type Span struct {
	Start int
	Stop  int
	Step  int
}

// All spans an entire dimension.
func All() Span { return Span{Start: 0, Stop: math.MaxInt, Step: 1} }

// Range spans [start, stop).
func Range(start, stop int) Span { return Span{Start: start, Stop: stop, Step: 1} }

// RangeStep spans [start, stop) with a stride.
func RangeStep(start, stop, step int) Span { return Span{Start: start, Stop: stop, Step: step} }

// Point spans the single position i.
func Point(i int) Span { return Span{Start: i, Stop: i + 1, Step: 1} }

// indices resolves the span against a dimension of the given size,
// returning the selected positions in order.
func (s Span) indices(size int) ([]int64, error) {
	step := s.Step
	if step == 0 {
		return nil, fmt.Errorf("matrixgo: span step must not be zero")
	}

	start, stop := s.Start, s.Stop
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}

	if step > 0 {
		start = max(0, min(start, size))
		stop = max(0, min(stop, size))
		n := 0
		if stop > start {
			n = (stop - start + step - 1) / step
		}
		out := make([]int64, 0, n)
		for i := start; i < stop; i += step {
			out = append(out, int64(i))
		}
		return out, nil
	}

	start = max(-1, min(start, size-1))
	stop = max(-1, min(stop, size-1))
	out := make([]int64, 0)
	for i := start; i > stop; i += step {
		out = append(out, int64(i))
	}
	return out, nil
}

// Block materializes a rectangular sub-block of a 2-d matrix as a Dense
// with shape (len(rows), len(cols)).
func (m *Matrix) Block(name string, rows, cols Span) (*Dense, error) {
	shape := m.store.Shape()
	if len(shape) != 2 {
		return nil, ErrNotTwoDimensional
	}
	ri, ci, err := blockIndices(shape, rows, cols)
	if err != nil {
		return nil, err
	}

	t, err := m.take([]string{name}, blockOffsets(shape, ri, ci))
	if err != nil {
		return nil, err
	}
	vals, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	return &Dense{Shape: []int{len(ri), len(ci)}, Values: vals}, nil
}

// BlockTable gathers the same rectangular sub-block from several matrices
// at once (all of them when names is nil), returning one row per (row,
// col) cell in row-major order, labeled with the grid coordinates.
func (m *Matrix) BlockTable(names []string, rows, cols Span) (*Frame, error) {
	shape := m.store.Shape()
	if len(shape) != 2 {
		return nil, ErrNotTwoDimensional
	}
	ri, ci, err := blockIndices(shape, rows, cols)
	if err != nil {
		return nil, err
	}

	offsets := blockOffsets(shape, ri, ci)
	t, err := m.take(names, offsets)
	if err != nil {
		return nil, err
	}

	rowLevel := make([]int64, len(offsets))
	colLevel := make([]int64, len(offsets))
	for a, r := range ri {
		for b, c := range ci {
			rowLevel[a*len(ci)+b] = r
			colLevel[a*len(ci)+b] = c
		}
	}
	return &Frame{
		Labels: &Labels{
			Names:  []string{"i", "j"},
			Levels: [][]int64{rowLevel, colLevel},
		},
		Table: t,
	}, nil
}

func blockIndices(shape []int, rows, cols Span) ([]int64, []int64, error) {
	ri, err := rows.indices(shape[0])
	if err != nil {
		return nil, nil, err
	}
	ci, err := cols.indices(shape[1])
	if err != nil {
		return nil, nil, err
	}
	return ri, ci, nil
}

// blockOffsets expands a row/column grid into flat row-major offsets.
func blockOffsets(shape []int, ri, ci []int64) []int64 {
	stride := int64(shape[1])
	offsets := make([]int64, 0, len(ri)*len(ci))
	for _, r := range ri {
		for _, c := range ci {
			offsets = append(offsets, r*stride+c)
		}
	}
	return offsets
}
