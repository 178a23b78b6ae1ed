package matrixgo

import (
	"log/slog"

	"github.com/hupe1980/matrixgo/store"
)

// Compression selects block compression for writes; re-exported from
// package store for convenience.
type Compression = store.Compression

// Compression codecs.
const (
	CompressionNone = store.CompressionNone
	CompressionLZ4  = store.CompressionLZ4
	CompressionZSTD = store.CompressionZSTD
)

// Format identifies a backend's on-disk encoding; re-exported from
// package store for convenience.
type Format = store.Format

// Backend formats.
const (
	// Flat is the memory-mapped whole-file backend.
	Flat = store.FormatFlat
	// RowGroup is the chunked, column-pruned backend.
	RowGroup = store.FormatRowGroup
)

type options struct {
	logger       *Logger
	shape        []int
	strictShape  bool
	overwrite    bool
	codec        Compression
	rowGroupRows int
	columns      []string
}

// Option configures open, conversion, and write behavior.
type Option func(*options)

// WithLogger sets the diagnostics logger. The default logs warnings to
// stderr; pass NoopLogger() to silence them.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLogLevel is shorthand for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) { o.logger = NewTextLogger(level) }
}

// WithShape supplies an explicit matrix shape, overriding (or substituting
// for) shape metadata.
func WithShape(shape ...int) Option {
	return func(o *options) { o.shape = shape }
}

// WithStrictShape makes a shape/row-count inconsistency a hard open
// failure instead of a logged warning.
func WithStrictShape(strict bool) Option {
	return func(o *options) { o.strictShape = strict }
}

// WithOverwrite allows conversion entry points to replace an existing
// destination file. Without it, writing over an existing file fails.
func WithOverwrite(overwrite bool) Option {
	return func(o *options) { o.overwrite = overwrite }
}

// WithCompression selects the block compression codec for writes.
func WithCompression(codec Compression) Option {
	return func(o *options) { o.codec = codec }
}

// WithRowGroupRows sets the rows per row group for the row-group backend.
func WithRowGroupRows(n int) Option {
	return func(o *options) { o.rowGroupRows = n }
}

// WithColumns restricts a conversion (FromMatrix, Buffer, Buffered) to a
// subset of columns.
func WithColumns(names ...string) Option {
	return func(o *options) { o.columns = names }
}

func applyOptions(optFns []Option) options {
	o := options{
		logger: NewTextLogger(slog.LevelWarn),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o options) storeOptions() []store.Option {
	opts := []store.Option{
		store.WithLogger(o.logger.Logger),
		store.WithStrictShape(o.strictShape),
		store.WithCodec(o.codec),
	}
	if len(o.shape) > 0 {
		opts = append(opts, store.WithShape(o.shape...))
	}
	if o.rowGroupRows > 0 {
		opts = append(opts, store.WithRowGroupRows(o.rowGroupRows))
	}
	return opts
}
