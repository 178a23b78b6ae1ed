package matrixgo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpanIndices(t *testing.T) {
	tests := []struct {
		name string
		span Span
		size int
		want []int64
	}{
		{name: "all", span: All(), size: 5, want: []int64{0, 1, 2, 3, 4}},
		{name: "range", span: Range(1, 4), size: 5, want: []int64{1, 2, 3}},
		{name: "range clamped", span: Range(3, 99), size: 5, want: []int64{3, 4}},
		{name: "negative stop", span: Range(0, -1), size: 5, want: []int64{0, 1, 2, 3}},
		{name: "negative start", span: Range(-2, 5), size: 5, want: []int64{3, 4}},
		{name: "step", span: RangeStep(0, 5, 2), size: 5, want: []int64{0, 2, 4}},
		{name: "negative step", span: RangeStep(4, 0, -2), size: 5, want: []int64{4, 2}},
		{name: "negative step to front", span: RangeStep(4, -6, -2), size: 5, want: []int64{4, 2, 0}},
		{name: "point", span: Point(2), size: 5, want: []int64{2}},
		{name: "empty", span: Range(3, 3), size: 5, want: []int64{}},
		{name: "inverted", span: Range(4, 1), size: 5, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.span.indices(tt.size)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSpanIndicesZeroStep(t *testing.T) {
	_, err := Span{Start: 0, Stop: 5, Step: 0}.indices(5)
	require.Error(t, err)
}

func TestBlock(t *testing.T) {
	mtx := testMatrix(t, Flat)
	defer mtx.Close()

	t.Run("rectangle", func(t *testing.T) {
		dense, err := mtx.Block("SOV_TIME__AM", Range(1, 3), Range(2, 5))
		require.NoError(t, err)
		require.Equal(t, []int{2, 3}, dense.Shape)
		require.Len(t, dense.Values, 6)

		for a := 0; a < 2; a++ {
			for b := 0; b < 3; b++ {
				require.Equal(t, cellAM(a+1, b+2), dense.At(a, b))
			}
		}
	})

	t.Run("full row", func(t *testing.T) {
		dense, err := mtx.Block("SOV_TIME__AM", Point(7), All())
		require.NoError(t, err)
		require.Equal(t, []int{1, 25}, dense.Shape)
		for d := 0; d < 25; d++ {
			require.Equal(t, cellAM(7, d), dense.At(0, d))
		}
	})

	t.Run("strided", func(t *testing.T) {
		dense, err := mtx.Block("SOV_TIME__AM", RangeStep(0, 25, 5), Point(0))
		require.NoError(t, err)
		require.Equal(t, []int{5, 1}, dense.Shape)
		for a := 0; a < 5; a++ {
			require.Equal(t, cellAM(a*5, 0), dense.At(a, 0))
		}
	})

	t.Run("unknown matrix", func(t *testing.T) {
		_, err := mtx.Block("NOPE", All(), All())
		require.Error(t, err)
	})
}

func TestBlockTable(t *testing.T) {
	mtx := testMatrix(t, RowGroup)
	defer mtx.Close()

	t.Run("all matrices", func(t *testing.T) {
		frame, err := mtx.BlockTable(nil, Range(0, 2), Range(0, 2))
		require.NoError(t, err)
		require.Equal(t, 4, frame.NumRows())
		require.Equal(t, []string{"i", "j"}, frame.Labels.Names)
		require.Equal(t, []int64{0, 0, 1, 1}, frame.Labels.Level(0))
		require.Equal(t, []int64{0, 1, 0, 1}, frame.Labels.Level(1))

		am, err := frame.Column("SOV_TIME__AM")
		require.NoError(t, err)
		require.Equal(t, []float64{cellAM(0, 0), cellAM(0, 1), cellAM(1, 0), cellAM(1, 1)}, am)

		ea, err := frame.Column("SOV_TIME__EA")
		require.NoError(t, err)
		require.Equal(t, []float64{cellEA(0, 0), cellEA(0, 1), cellEA(1, 0), cellEA(1, 1)}, ea)
	})

	t.Run("not 2d", func(t *testing.T) {
		cube := testMatrix3D(t)
		defer cube.Close()

		_, err := cube.BlockTable(nil, All(), All())
		require.ErrorIs(t, err, ErrNotTwoDimensional)
	})
}
