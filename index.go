package matrixgo

// Index is one per-dimension coordinate argument to a gather: either a
// scalar position (broadcast against the other dimensions' arrays) or an
// array of positions. An Index may carry a name, used as the label level
// name in gathered results.
type Index struct {
	Name   string
	Values []int64
	scalar bool
}

// Ix builds an array Index from positions.
func Ix(values ...int) Index {
	vals := make([]int64, len(values))
	for i, v := range values {
		vals[i] = int64(v)
	}
	return Index{Values: vals}
}

// Ix64 builds an array Index from int64 positions. The slice is retained.
func Ix64(values []int64) Index {
	return Index{Values: values}
}

// Scalar builds a single-position Index that broadcasts against array
// indexes in other dimensions.
func Scalar(v int) Index {
	return Index{Values: []int64{int64(v)}, scalar: true}
}

// Named builds an array Index with a label level name.
func Named(name string, values ...int) Index {
	ix := Ix(values...)
	ix.Name = name
	return ix
}

// IsScalar reports whether the index broadcasts as a single position.
func (ix Index) IsScalar() bool { return ix.scalar }

// Len returns the number of positions.
func (ix Index) Len() int { return len(ix.Values) }

// indexLetters provides default label level names by dimension position.
const indexLetters = "ijklmnopqrstuvwxyz"

// levelName returns the index's name, or the conventional letter for its
// dimension position.
func (ix Index) levelName(dim int) string {
	if ix.Name != "" {
		return ix.Name
	}
	if dim < len(indexLetters) {
		return string(indexLetters[dim])
	}
	return ""
}

// Labels is a multi-level row label attached to gathered results: one
// level per matrix dimension, aligned with the result rows.
type Labels struct {
	Names  []string
	Levels [][]int64
}

// NumLevels returns the number of label levels.
func (l *Labels) NumLevels() int { return len(l.Levels) }

// Level returns the values of one label level.
func (l *Labels) Level(i int) []int64 { return l.Levels[i] }

// LevelByName returns the values of the named level, or nil.
func (l *Labels) LevelByName(name string) []int64 {
	for i, n := range l.Names {
		if n == name {
			return l.Levels[i]
		}
	}
	return nil
}
