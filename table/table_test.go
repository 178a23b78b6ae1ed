package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	tab, err := New(
		[]string{"a", "b", "c"},
		[][]float64{
			{1, 2, 3, 4},
			{10, 20, 30, 40},
			{100, 200, 300, 400},
		},
		NewMeta(2, 2),
	)
	require.NoError(t, err)
	return tab
}

func TestNew(t *testing.T) {
	t.Run("Basic", func(t *testing.T) {
		tab := newTestTable(t)
		assert.Equal(t, []string{"a", "b", "c"}, tab.Names())
		assert.Equal(t, 4, tab.NumRows())
		assert.Equal(t, 3, tab.NumCols())
		assert.Equal(t, []int{2, 2}, tab.Meta().Shape)
		assert.Equal(t, OMXVersion, tab.Meta().Version)
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		_, err := New(
			[]string{"a", "b"},
			[][]float64{{1, 2}, {1, 2, 3}},
			Meta{},
		)
		var lm *ErrColumnLengthMismatch
		require.ErrorAs(t, err, &lm)
		assert.Equal(t, "b", lm.Name)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		_, err := New(
			[]string{"a", "a"},
			[][]float64{{1}, {2}},
			Meta{},
		)
		require.Error(t, err)
	})
}

func TestSelect(t *testing.T) {
	tab := newTestTable(t)

	t.Run("All", func(t *testing.T) {
		got, err := tab.Select(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, got.Names())
	})

	t.Run("OrderAsRequested", func(t *testing.T) {
		got, err := tab.Select([]string{"c", "a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a"}, got.Names())

		col, err := got.Column("c")
		require.NoError(t, err)
		assert.Equal(t, []float64{100, 200, 300, 400}, col)
	})

	t.Run("MetadataPreserved", func(t *testing.T) {
		got, err := tab.Select([]string{"b"})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 2}, got.Meta().Shape)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := tab.Select([]string{"a", "nope"})
		var cnf *ErrColumnNotFound
		require.ErrorAs(t, err, &cnf)
		assert.Equal(t, "nope", cnf.Name)
	})
}

func TestTake(t *testing.T) {
	tab := newTestTable(t)

	t.Run("OrderPreservingWithDuplicates", func(t *testing.T) {
		got, err := tab.Take([]int64{3, 0, 0, 2})
		require.NoError(t, err)
		require.Equal(t, 4, got.NumRows())

		a, err := got.Column("a")
		require.NoError(t, err)
		assert.Equal(t, []float64{4, 1, 1, 3}, a)

		c, err := got.Column("c")
		require.NoError(t, err)
		assert.Equal(t, []float64{400, 100, 100, 300}, c)
	})

	t.Run("Empty", func(t *testing.T) {
		got, err := tab.Take(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, got.NumRows())
		assert.Equal(t, 3, got.NumCols())
	})

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := tab.Take([]int64{0, 4})
		var oor *ErrRowOutOfRange
		require.ErrorAs(t, err, &oor)
		assert.Equal(t, int64(4), oor.Offset)

		_, err = tab.Take([]int64{-1})
		require.ErrorAs(t, err, &oor)
	})
}

func TestColumn(t *testing.T) {
	tab := newTestTable(t)

	col, err := tab.Column("b")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30, 40}, col)

	_, err = tab.Column("zzz")
	var cnf *ErrColumnNotFound
	require.ErrorAs(t, err, &cnf)
}

func TestEqual(t *testing.T) {
	t.Run("Identical", func(t *testing.T) {
		assert.True(t, newTestTable(t).Equal(newTestTable(t)))
	})

	t.Run("NaNCompareEqual", func(t *testing.T) {
		nan := math.NaN()
		a, err := New([]string{"x"}, [][]float64{{1, nan}}, NewMeta(2))
		require.NoError(t, err)
		b, err := New([]string{"x"}, [][]float64{{1, nan}}, NewMeta(2))
		require.NoError(t, err)
		assert.True(t, a.Equal(b))
	})

	t.Run("ValueDiffers", func(t *testing.T) {
		a := newTestTable(t)
		b, err := New(
			[]string{"a", "b", "c"},
			[][]float64{
				{1, 2, 3, 4},
				{10, 20, 99, 40},
				{100, 200, 300, 400},
			},
			NewMeta(2, 2),
		)
		require.NoError(t, err)
		assert.False(t, a.Equal(b))
	})

	t.Run("NameOrderDiffers", func(t *testing.T) {
		a := newTestTable(t)
		b, err := a.Select([]string{"b", "a", "c"})
		require.NoError(t, err)
		assert.False(t, a.Equal(b))
	})

	t.Run("MetaDiffers", func(t *testing.T) {
		a := newTestTable(t)
		assert.False(t, a.Equal(a.WithMeta(NewMeta(4))))
	})
}
