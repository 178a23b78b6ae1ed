package matrixgo

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/matrixgo/blobstore"
)

func TestFromSource(t *testing.T) {
	for _, format := range []Format{Flat, RowGroup} {
		t.Run(format.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "skims.mtx")

			mtx, err := FromSource(testSource(), path, format, WithLogger(NoopLogger()))
			require.NoError(t, err)
			require.NoError(t, mtx.Close())

			reopened, err := Open(path, WithLogger(NoopLogger()))
			require.NoError(t, err)
			defer reopened.Close()

			require.Equal(t, []int{testZones, testZones}, reopened.Shape())
			require.Equal(t, "0.3.0a", reopened.Version())

			vals, err := reopened.GetRCValues("SOV_TIME__AM", Ix(4, 8), Ix(6, 3))
			require.NoError(t, err)
			require.Equal(t, []float64{cellAM(4, 6), cellAM(8, 3)}, vals)
		})
	}
}

func TestFromSourceColumnSubset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skims.mtx")

	mtx, err := FromSource(testSource(), path, Flat,
		WithColumns("SOV_TIME__AM"),
		WithLogger(NoopLogger()),
	)
	require.NoError(t, err)
	defer mtx.Close()

	require.Equal(t, []string{"SOV_TIME__AM"}, mtx.ListMatrices())
}

func TestFromSourceOverwriteGuard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skims.mtx")

	mtx, err := FromSource(testSource(), path, Flat, WithLogger(NoopLogger()))
	require.NoError(t, err)
	require.NoError(t, mtx.Close())

	_, err = FromSource(testSource(), path, Flat, WithLogger(NoopLogger()))
	require.ErrorIs(t, err, fs.ErrExist)

	mtx, err = FromSource(testSource(), path, Flat,
		WithOverwrite(true),
		WithLogger(NoopLogger()),
	)
	require.NoError(t, err)
	require.NoError(t, mtx.Close())
}

func TestFromLookupSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skims.lookup.mtx")

	err := FromLookupSource(testSource(), path, Flat, WithLogger(NoopLogger()))
	require.NoError(t, err)

	mtx, err := Open(path, WithLogger(NoopLogger()))
	require.NoError(t, err)
	defer mtx.Close()

	require.Equal(t, []int{testZones}, mtx.Shape())
	require.Equal(t, []string{"TAZ"}, mtx.ListMatrices())

	taz, err := mtx.GetRaw("TAZ")
	require.NoError(t, err)
	require.Equal(t, lookupVals(), taz)
}

func TestFromMatrixConvert(t *testing.T) {
	dir := t.TempDir()
	flatPath := filepath.Join(dir, "skims.flat.mtx")
	groupPath := filepath.Join(dir, "skims.group.mtx")

	flat, err := FromSource(testSource(), flatPath, Flat, WithLogger(NoopLogger()))
	require.NoError(t, err)
	defer flat.Close()

	grouped, err := FromMatrix(flat, groupPath, RowGroup,
		WithRowGroupRows(100),
		WithLogger(NoopLogger()),
	)
	require.NoError(t, err)
	defer grouped.Close()

	require.Equal(t, flat.ListMatrices(), grouped.ListMatrices())
	require.Equal(t, flat.Shape(), grouped.Shape())

	a, err := flat.GetRaw("SOV_TIME__EA")
	require.NoError(t, err)
	b, err := grouped.GetRaw("SOV_TIME__EA")
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestBufferRoundTrip(t *testing.T) {
	for _, format := range []Format{Flat, RowGroup} {
		t.Run(format.String(), func(t *testing.T) {
			data, err := Buffer(testSource(), format, WithLogger(NoopLogger()))
			require.NoError(t, err)
			require.NotEmpty(t, data)

			mtx, err := OpenBuffer(data, WithLogger(NoopLogger()))
			require.NoError(t, err)
			defer mtx.Close()

			vals, err := mtx.GetRCValues("SOV_TIME__EA", Ix(0, 12), Ix(24, 12))
			require.NoError(t, err)
			require.Equal(t, []float64{cellEA(0, 24), cellEA(12, 12)}, vals)
		})
	}
}

func TestBufferedCompression(t *testing.T) {
	for _, codec := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(codec.String(), func(t *testing.T) {
			mtx, err := Buffered(testSource(), RowGroup,
				WithCompression(codec),
				WithLogger(NoopLogger()),
			)
			require.NoError(t, err)
			defer mtx.Close()

			vals, err := mtx.GetRCValues("SOV_TIME__AM", Ix(10), Ix(20))
			require.NoError(t, err)
			require.Equal(t, []float64{cellAM(10, 20)}, vals)
		})
	}
}

func TestOpenFrom(t *testing.T) {
	ctx := context.Background()

	for _, format := range []Format{Flat, RowGroup} {
		t.Run(format.String(), func(t *testing.T) {
			data, err := Buffer(testSource(), format, WithLogger(NoopLogger()))
			require.NoError(t, err)

			bs := blobstore.NewMemoryStore()
			bs.Put("skims.mtx", data)

			mtx, err := OpenFrom(ctx, bs, "skims.mtx", WithLogger(NoopLogger()))
			require.NoError(t, err)
			defer mtx.Close()

			vals, err := mtx.GetRCValues("SOV_TIME__AM", Ix(1, 2), Ix(3, 4))
			require.NoError(t, err)
			require.Equal(t, []float64{cellAM(1, 3), cellAM(2, 4)}, vals)
		})
	}

	t.Run("missing blob", func(t *testing.T) {
		_, err := OpenFrom(ctx, blobstore.NewMemoryStore(), "nope.mtx")
		require.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}

func TestOpenFromLocalStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skims.mtx")

	mtx, err := FromSource(testSource(), path, RowGroup, WithLogger(NoopLogger()))
	require.NoError(t, err)
	require.NoError(t, mtx.Close())

	bs := blobstore.NewLocalStore(dir)
	opened, err := OpenFrom(context.Background(), bs, "skims.mtx", WithLogger(NoopLogger()))
	require.NoError(t, err)
	defer opened.Close()

	require.Equal(t, []int{testZones, testZones}, opened.Shape())
}
