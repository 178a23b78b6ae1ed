package matrixgo

// Takers converts per-dimension coordinate indexes into flat row offsets
// into a row-major flattened matrix of the given shape:
//
//	offset = i0*(d1*...*dN-1) + i1*(d2*...*dN-1) + ... + iN-1
//
// Exactly one Index per dimension must be supplied; array indexes must all
// share one length, scalars broadcast. Offsets are not range-checked here;
// an out-of-range coordinate surfaces as a take error downstream.
func Takers(shape []int, indexes ...Index) ([]int64, error) {
	offsets, _, err := takers(shape, indexes, false)
	return offsets, err
}

// TakersWithLabels is Takers plus a multi-level row label built from the
// supplied indexes. Unnamed indexes get conventional letters by dimension
// position (i, j, k, ...).
func TakersWithLabels(shape []int, indexes ...Index) ([]int64, *Labels, error) {
	return takers(shape, indexes, true)
}

func takers(shape []int, indexes []Index, attachLabels bool) ([]int64, *Labels, error) {
	if len(indexes) != len(shape) {
		return nil, nil, &ErrDimensionMismatch{Expected: len(shape), Actual: len(indexes)}
	}

	n, err := broadcastLen(indexes)
	if err != nil {
		return nil, nil, err
	}

	offsets := make([]int64, n)
	stride := int64(1)
	for dim := len(shape) - 1; dim >= 0; dim-- {
		ix := indexes[dim]
		if ix.scalar {
			add := ix.Values[0] * stride
			for j := range offsets {
				offsets[j] += add
			}
		} else {
			for j := range offsets {
				offsets[j] += ix.Values[j] * stride
			}
		}
		stride *= int64(shape[dim])
	}

	if !attachLabels {
		return offsets, nil, nil
	}

	labels := &Labels{
		Names:  make([]string, len(indexes)),
		Levels: make([][]int64, len(indexes)),
	}
	for dim, ix := range indexes {
		labels.Names[dim] = ix.levelName(dim)
		if ix.scalar {
			level := make([]int64, n)
			for j := range level {
				level[j] = ix.Values[0]
			}
			labels.Levels[dim] = level
		} else {
			labels.Levels[dim] = append([]int64(nil), ix.Values...)
		}
	}
	return offsets, labels, nil
}

// broadcastLen returns the common length of the array indexes. All arrays
// must agree; scalars take whatever length the arrays dictate. With only
// scalars the result is a single offset.
func broadcastLen(indexes []Index) (int, error) {
	n := -1
	for _, ix := range indexes {
		if ix.scalar {
			continue
		}
		if n < 0 {
			n = ix.Len()
		} else if ix.Len() != n {
			return 0, &ErrIndexLengthMismatch{Name: ix.Name, Got: ix.Len(), Want: n}
		}
	}
	if n < 0 {
		n = 1
	}
	return n, nil
}
