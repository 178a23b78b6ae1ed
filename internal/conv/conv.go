// Package conv provides reinterpretation between float64 slices and their
// raw byte representation, plus safe integer narrowing used by the file
// format headers.
package conv

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// Float64Size is the size of a float64 in bytes.
const Float64Size = 8

// Float64sAsBytes reinterprets a float64 slice as its underlying bytes
// without copying. The returned slice aliases vals.
func Float64sAsBytes(vals []float64) []byte {
	if len(vals) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vals[0])), len(vals)*Float64Size)
}

// BytesAsFloat64s reinterprets raw bytes as a float64 slice without copying.
// The data must be 8-byte aligned and a multiple of 8 bytes long; otherwise
// an error is returned and the caller should fall back to DecodeFloat64s.
func BytesAsFloat64s(data []byte) ([]float64, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data)%Float64Size != 0 {
		return nil, fmt.Errorf("conv: byte length %d is not a multiple of %d", len(data), Float64Size)
	}
	if uintptr(unsafe.Pointer(&data[0]))%Float64Size != 0 {
		return nil, fmt.Errorf("conv: data is not %d-byte aligned", Float64Size)
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), len(data)/Float64Size), nil
}

// DecodeFloat64s decodes little-endian float64 values with a copy.
// Works for unaligned data.
func DecodeFloat64s(data []byte) ([]float64, error) {
	if len(data)%Float64Size != 0 {
		return nil, fmt.Errorf("conv: byte length %d is not a multiple of %d", len(data), Float64Size)
	}
	vals := make([]float64, len(data)/Float64Size)
	for i := range vals {
		vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*Float64Size:]))
	}
	return vals, nil
}

// IntToUint32 converts int to uint32 safely.
func IntToUint32(v int) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (negative)", v)
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (too large)", v)
	}
	return uint32(v), nil
}

// Uint64ToInt converts uint64 to int safely.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too large)", v)
	}
	return int(v), nil
}
