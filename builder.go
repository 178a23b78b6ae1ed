package matrixgo

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/hupe1980/matrixgo/blobstore"
	"github.com/hupe1980/matrixgo/store"
	"github.com/hupe1980/matrixgo/table"
)

// Open opens the persisted matrix table at path, sniffing the backend
// format from the file's magic.
func Open(path string, optFns ...Option) (*Matrix, error) {
	o := applyOptions(optFns)
	s, err := store.Open(path, o.storeOptions()...)
	if err != nil {
		return nil, err
	}
	return newMatrix(s, o.logger), nil
}

// OpenBuffer opens a matrix table held in memory. The buffer is aliased,
// not copied; it must stay alive while the matrix is in use.
func OpenBuffer(data []byte, optFns ...Option) (*Matrix, error) {
	o := applyOptions(optFns)
	s, err := store.OpenBuffer(data, o.storeOptions()...)
	if err != nil {
		return nil, err
	}
	return newMatrix(s, o.logger), nil
}

// OpenFrom opens a matrix table from a blob store. Flat tables are pulled
// into memory (zero-copy when the blob is local); row-group tables are
// read lazily through ranged reads, so wide tables on object storage cost
// only the chunks a query touches. The blob stays open until the returned
// matrix is closed.
func OpenFrom(ctx context.Context, bs blobstore.Store, name string, optFns ...Option) (*Matrix, error) {
	o := applyOptions(optFns)

	blob, err := bs.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	format, err := store.DetectFormat(blob)
	if err != nil {
		_ = blob.Close()
		return nil, err
	}

	var s store.Store
	switch format {
	case store.FormatFlat:
		data, rerr := blobstore.ReadAll(blob)
		if rerr == nil {
			s, rerr = store.OpenFlatBuffer(data, o.storeOptions()...)
		}
		err = rerr
	default:
		s, err = store.OpenRowGroupReader(blob, blob.Size(), o.storeOptions()...)
	}
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	return newMatrix(s, o.logger, blob), nil
}

// FromSource drains a matrix source into a new backend file at path and
// returns an open handle on it. WithColumns restricts the conversion to a
// subset of the source's matrices; WithOverwrite allows replacing an
// existing file.
func FromSource(src Source, path string, format Format, optFns ...Option) (*Matrix, error) {
	o := applyOptions(optFns)
	if err := checkDestination(path, o.overwrite); err != nil {
		return nil, err
	}

	t, err := TableFromSource(src, o.columns)
	if err != nil {
		return nil, err
	}
	if err := store.WriteFile(path, format, t, o.storeOptions()...); err != nil {
		return nil, err
	}

	s, err := store.Open(path, o.storeOptions()...)
	if err != nil {
		return nil, err
	}
	return newMatrix(s, o.logger), nil
}

// FromLookupSource writes a source's zone-label lookup vectors to a
// companion table file at path.
func FromLookupSource(src LookupSource, path string, format Format, optFns ...Option) error {
	o := applyOptions(optFns)
	if err := checkDestination(path, o.overwrite); err != nil {
		return err
	}

	t, err := LookupTableFromSource(src)
	if err != nil {
		return err
	}
	return store.WriteFile(path, format, t, o.storeOptions()...)
}

// FromTable persists an in-memory matrix table to path and returns an
// open handle on it. The table's metadata (or WithShape) supplies the
// shape.
func FromTable(t *table.Table, path string, format Format, optFns ...Option) (*Matrix, error) {
	o := applyOptions(optFns)
	if err := checkDestination(path, o.overwrite); err != nil {
		return nil, err
	}
	if o.columns != nil {
		var err error
		if t, err = t.Select(o.columns); err != nil {
			return nil, err
		}
	}
	if err := store.WriteFile(path, format, t, o.storeOptions()...); err != nil {
		return nil, err
	}

	s, err := store.Open(path, o.storeOptions()...)
	if err != nil {
		return nil, err
	}
	return newMatrix(s, o.logger), nil
}

// FromMatrix converts an open matrix table to another file, typically in
// the other backend format. WithColumns restricts the conversion to a
// subset of the matrices.
func FromMatrix(m *Matrix, path string, format Format, optFns ...Option) (*Matrix, error) {
	t, err := m.store.Select(applyOptions(optFns).columns)
	if err != nil {
		return nil, err
	}
	return FromTable(t, path, format, optFns...)
}

// Buffer serializes a source to an in-memory matrix table file.
func Buffer(src Source, format Format, optFns ...Option) ([]byte, error) {
	o := applyOptions(optFns)

	t, err := TableFromSource(src, o.columns)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := store.Write(&buf, format, t, o.storeOptions()...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Buffered drains a source into memory and returns an open handle, for
// matrix tables that never need to touch disk.
func Buffered(src Source, format Format, optFns ...Option) (*Matrix, error) {
	data, err := Buffer(src, format, optFns...)
	if err != nil {
		return nil, err
	}
	return OpenBuffer(data, optFns...)
}

// checkDestination guards conversion targets against accidental
// overwrites. The returned error satisfies errors.Is(err, fs.ErrExist).
func checkDestination(path string, overwrite bool) error {
	if overwrite {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("matrixgo: destination %q: %w", path, fs.ErrExist)
	}
	return nil
}
