package table

import (
	"fmt"
	"strconv"
	"strings"
)

// OMXVersion is the format-version tag embedded in every persisted table.
const OMXVersion = "0.3.0a"

// Schema metadata keys shared by every backend. SHAPE holds the textual
// tuple rendering of the shape, e.g. "(25, 25)"; OMX_VERSION holds the
// fixed format tag.
const (
	MetadataKeyVersion = "OMX_VERSION"
	MetadataKeyShape   = "SHAPE"
)

// Meta carries the shape and format version attached to a matrix table.
type Meta struct {
	Shape   []int
	Version string
}

// NewMeta returns metadata for the given shape with the current format
// version.
func NewMeta(shape ...int) Meta {
	return Meta{Shape: shape, Version: OMXVersion}
}

// NDims returns the number of dimensions, zero when no shape is set.
func (m Meta) NDims() int { return len(m.Shape) }

// HasShape reports whether a shape is attached.
func (m Meta) HasShape() bool { return len(m.Shape) > 0 }

// Product returns the product of the shape's dimension sizes.
func Product(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// FormatShape renders a shape as a textual tuple, matching the layout
// emitted by existing writers: "(25, 25)" for 2-d, "(649,)" for 1-d.
func FormatShape(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return fmt.Sprintf("(%d,)", shape[0])
	default:
		parts := make([]string, len(shape))
		for i, d := range shape {
			parts[i] = strconv.Itoa(d)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
}

// ParseShape parses the textual tuple rendering back into a shape. A bare
// integer (the 1-d writers' historical form) is accepted as a
// one-dimensional shape.
func ParseShape(s string) ([]int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, fmt.Errorf("table: empty shape string")
	}
	if strings.HasPrefix(trimmed, "(") {
		if !strings.HasSuffix(trimmed, ")") {
			return nil, fmt.Errorf("table: malformed shape %q", s)
		}
		trimmed = trimmed[1 : len(trimmed)-1]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), ",")
	if strings.TrimSpace(trimmed) == "" {
		return nil, fmt.Errorf("table: empty shape %q", s)
	}

	parts := strings.Split(trimmed, ",")
	shape := make([]int, 0, len(parts))
	for _, part := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("table: malformed shape %q: %w", s, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("table: non-positive dimension %d in shape %q", d, s)
		}
		shape = append(shape, d)
	}
	return shape, nil
}
