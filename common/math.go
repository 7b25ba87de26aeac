package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// MipLevels returns the number of half-resolution mip levels for the given
// dimensions, capped at maxLevels: min(maxLevels, ceil(log2(max(w, h)))).
// Zero or negative dimensions yield zero levels.
//
// Parameters:
//   - width, height: full resolution in pixels
//   - maxLevels: upper bound on the level count
//
// Returns:
//   - int: the mip level count
func MipLevels(width, height, maxLevels int) int {
	longest := width
	if height > longest {
		longest = height
	}
	if longest <= 0 || maxLevels <= 0 {
		return 0
	}
	levels := int(math32.Ceil(math32.Log2(float32(longest))))
	if levels < 1 {
		levels = 1
	}
	if levels > maxLevels {
		levels = maxLevels
	}
	return levels
}
