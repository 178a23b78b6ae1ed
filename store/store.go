// Package store defines the columnar storage contract for persisted matrix
// tables and provides the two concrete backends that satisfy it: a flat,
// memory-mapped whole-file format and a row-group-chunked, column-pruned
// format.
//
// Both backends embed the same schema metadata (OMX_VERSION and SHAPE, see
// package table) so files are interchangeable at the contract level even
// though their on-disk encodings differ.
package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/matrixgo/internal/block"
	"github.com/hupe1980/matrixgo/table"
)

var (
	// ErrMissingShape is returned when a table carries no SHAPE metadata
	// and no explicit shape was supplied at open time.
	ErrMissingShape = errors.New("store: shape could not be determined")

	// ErrInvalidMagic indicates a file that is not a matrix table.
	ErrInvalidMagic = errors.New("store: invalid magic number")

	// ErrInvalidVersion indicates an unsupported file format version.
	ErrInvalidVersion = errors.New("store: unsupported format version")
)

// ShapeInconsistencyError reports a declared shape whose element product
// disagrees with the stored row count. By default this is logged as a
// warning at open time rather than failing the open; WithStrictShape turns
// it into a hard error.
type ShapeInconsistencyError struct {
	Shape   []int
	NumRows int
}

func (e *ShapeInconsistencyError) Error() string {
	return fmt.Sprintf("shape %v (%d cells) not consistent with %d rows",
		e.Shape, table.Product(e.Shape), e.NumRows)
}

// CheckShape validates a shape against a row count.
func CheckShape(shape []int, numRows int) error {
	if len(shape) > 0 && table.Product(shape) != numRows {
		return &ShapeInconsistencyError{Shape: shape, NumRows: numRows}
	}
	return nil
}

// Store is the read contract every backend satisfies. A Store is opened
// once over an immutable file and exposes read-only projections of it.
type Store interface {
	// Names returns the column names in file order.
	Names() []string
	// Shape returns the matrix shape recovered from metadata (or supplied
	// at open).
	Shape() []int
	// Version returns the format-version tag recovered from metadata.
	Version() string
	// NumRows returns the stored row count.
	NumRows() int
	// Select returns the requested columns as an in-memory table, all
	// columns when names is nil.
	Select(names []string) (*table.Table, error)
	// Close releases the underlying file or mapping.
	Close() error
}

// Taker is an optional capability: backends that can gather rows without
// materializing whole columns implement it. Row order follows offsets;
// duplicate offsets are allowed.
type Taker interface {
	TakeColumns(names []string, offsets []int64) (*table.Table, error)
}

// Compression selects the block compression applied to column data on
// write. Openers recover the codec from the file; no option is needed to
// read compressed tables.
type Compression uint8

const (
	// CompressionNone stores column data uncompressed, preserving the
	// flat backend's zero-copy reads.
	CompressionNone = Compression(block.CodecNone)
	// CompressionLZ4 trades a little ratio for fast decompression.
	CompressionLZ4 = Compression(block.CodecLZ4)
	// CompressionZSTD favors compression ratio.
	CompressionZSTD = Compression(block.CodecZSTD)
)

// String returns the codec name as embedded in file directories.
func (c Compression) String() string { return block.Codec(c).String() }

// Options control open and write behavior across backends.
type Options struct {
	// Shape overrides or supplies the matrix shape when metadata lacks it.
	Shape []int
	// StrictShape fails the open on a shape/row-count inconsistency
	// instead of logging a warning.
	StrictShape bool
	// Logger receives diagnostics; defaults to slog.Default.
	Logger *slog.Logger
	// Codec selects block compression for writes.
	Codec Compression
	// RowGroupRows sets the rows per row group for the row-group backend.
	RowGroupRows int
}

// DefaultRowGroupRows is the row-group size used when none is configured.
const DefaultRowGroupRows = 1 << 16

// Option mutates Options.
type Option func(*Options)

// WithShape supplies an explicit shape.
func WithShape(shape ...int) Option {
	return func(o *Options) { o.Shape = shape }
}

// WithStrictShape makes shape/row-count inconsistency a hard open failure.
func WithStrictShape(strict bool) Option {
	return func(o *Options) { o.StrictShape = strict }
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithCodec selects the block compression codec for writes.
func WithCodec(codec Compression) Option {
	return func(o *Options) { o.Codec = codec }
}

// WithRowGroupRows sets the rows per row group for the row-group backend.
func WithRowGroupRows(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.RowGroupRows = n
		}
	}
}

func applyOptions(optFns []Option) Options {
	o := Options{
		Codec:        CompressionNone,
		RowGroupRows: DefaultRowGroupRows,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// resolveMeta recovers shape and version from schema metadata, honoring an
// explicit shape override and the strict-shape policy.
func resolveMeta(metadata map[string]string, numRows int, o Options) (table.Meta, error) {
	meta := table.Meta{Version: metadata[table.MetadataKeyVersion]}

	if len(o.Shape) > 0 {
		meta.Shape = append([]int(nil), o.Shape...)
	} else if s, ok := metadata[table.MetadataKeyShape]; ok {
		shape, err := table.ParseShape(s)
		if err != nil {
			return table.Meta{}, err
		}
		meta.Shape = shape
	} else {
		return table.Meta{}, ErrMissingShape
	}

	if err := CheckShape(meta.Shape, numRows); err != nil {
		if o.StrictShape {
			return table.Meta{}, err
		}
		o.Logger.Warn("matrix table shape inconsistent with row count",
			"shape", table.FormatShape(meta.Shape),
			"rows", numRows,
		)
	}
	return meta, nil
}

// schemaMetadata renders the metadata entries embedded on write.
func schemaMetadata(meta table.Meta) map[string]string {
	version := meta.Version
	if version == "" {
		version = table.OMXVersion
	}
	return map[string]string{
		table.MetadataKeyVersion: version,
		table.MetadataKeyShape:   table.FormatShape(meta.Shape),
	}
}
