package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatChecksumDetectsCorruption(t *testing.T) {
	src := makeTable(t, []int{4, 4}, 2)
	path := filepath.Join(t.TempDir(), "skims.mtx")
	require.NoError(t, WriteFlatFile(path, src))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Flip a byte inside the data section (just past the header).
	data[flatHeaderSize+3] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err = OpenFlat(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum")
}

func TestFlatTruncated(t *testing.T) {
	_, err := OpenFlatBuffer([]byte("short"))
	require.Error(t, err)
}

func TestFlatZeroCopyInvalidatedByClose(t *testing.T) {
	src := makeTable(t, []int{3, 3}, 1)
	path := filepath.Join(t.TempDir(), "skims.mtx")
	require.NoError(t, WriteFlatFile(path, src))

	s, err := OpenFlat(path)
	require.NoError(t, err)

	got, err := s.Select(nil)
	require.NoError(t, err)
	col, err := got.Column("m00")
	require.NoError(t, err)
	want, err := src.Column("m00")
	require.NoError(t, err)
	assert.Equal(t, want, col)

	// Copy out before closing; the view aliases the mapping.
	copied := append([]float64(nil), col...)
	require.NoError(t, s.Close())
	assert.Equal(t, want, copied)
}

func TestFlatHeaderFields(t *testing.T) {
	src := makeTable(t, []int{2, 3}, 2)
	var buf bytes.Buffer
	require.NoError(t, WriteFlat(&buf, src))

	s, err := OpenFlatBuffer(buf.Bytes())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 6, s.NumRows())
	assert.Equal(t, []int{2, 3}, s.Shape())
	assert.Equal(t, []string{"m00", "m01"}, s.Names())
}
