package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat64sAsBytes(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		vals := []float64{0, 1.5, -2.25, math.Inf(1)}

		data := Float64sAsBytes(vals)
		require.Len(t, data, len(vals)*Float64Size)

		back, err := BytesAsFloat64s(data)
		require.NoError(t, err)
		assert.Equal(t, vals, back)
	})

	t.Run("Aliases", func(t *testing.T) {
		vals := []float64{1, 2}
		data := Float64sAsBytes(vals)

		back, err := BytesAsFloat64s(data)
		require.NoError(t, err)

		vals[0] = 42
		assert.Equal(t, 42.0, back[0])
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Nil(t, Float64sAsBytes(nil))

		back, err := BytesAsFloat64s(nil)
		require.NoError(t, err)
		assert.Nil(t, back)
	})
}

func TestBytesAsFloat64s(t *testing.T) {
	t.Run("NotMultipleOfEight", func(t *testing.T) {
		_, err := BytesAsFloat64s(make([]byte, 7))
		require.Error(t, err)
	})

	t.Run("Misaligned", func(t *testing.T) {
		// An odd offset into an aligned backing array cannot be 8-byte
		// aligned; the copying decoder still works on the same bytes.
		buf := Float64sAsBytes([]float64{1.5, 2.5, 0})
		data := buf[1 : 1+2*Float64Size]

		_, err := BytesAsFloat64s(data)
		require.Error(t, err)

		_, err = DecodeFloat64s(data)
		require.NoError(t, err)
	})
}

func TestDecodeFloat64s(t *testing.T) {
	t.Run("MatchesZeroCopy", func(t *testing.T) {
		vals := []float64{3.14, -1, math.MaxFloat64}
		data := Float64sAsBytes(vals)

		got, err := DecodeFloat64s(data)
		require.NoError(t, err)
		assert.Equal(t, vals, got)
	})

	t.Run("NaN", func(t *testing.T) {
		got, err := DecodeFloat64s(Float64sAsBytes([]float64{math.NaN()}))
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got[0]))
	})

	t.Run("NotMultipleOfEight", func(t *testing.T) {
		_, err := DecodeFloat64s(make([]byte, 9))
		require.Error(t, err)
	})
}

func TestIntToUint32(t *testing.T) {
	got, err := IntToUint32(42)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), got)

	_, err = IntToUint32(-1)
	require.Error(t, err)

	_, err = IntToUint32(math.MaxUint32 + 1)
	require.Error(t, err)
}

func TestUint64ToInt(t *testing.T) {
	got, err := Uint64ToInt(42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = Uint64ToInt(math.MaxUint64)
	require.Error(t, err)
}
