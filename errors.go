package matrixgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/matrixgo/store"
)

// ErrMissingShape is returned when a matrix shape could not be determined
// from any source and was not supplied explicitly.
var ErrMissingShape = store.ErrMissingShape

// ErrNotTwoDimensional is returned by Block and BlockTable on matrices
// that are not 2-d.
var ErrNotTwoDimensional = errors.New("matrixgo: block access requires a 2-d matrix")

// ErrDimensionMismatch indicates that the number of coordinate arguments
// does not match the matrix's dimensionality.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("number of indexes (%d) does not match ndims (%d)", e.Actual, e.Expected)
}

// ErrIndexLengthMismatch indicates coordinate arrays of unequal length.
// Scalars broadcast; arrays must all share one length.
type ErrIndexLengthMismatch struct {
	Name string
	Got  int
	Want int
}

func (e *ErrIndexLengthMismatch) Error() string {
	return fmt.Sprintf("index %q has %d values, want %d", e.Name, e.Got, e.Want)
}
