// package common contains small shared helpers used by both the CPU and GPU
// rendering paths: WebGPU-convention projection matrices and unsafe byte
// reinterpretation for GPU buffer uploads.
package common

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// depthZeroToOne remaps OpenGL clip-space depth [-1, 1] to the WebGPU
// convention [0, 1]. mathgl builds GL-convention matrices, so every
// projection produced by this package is pre-multiplied by this matrix.
var depthZeroToOne = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// PerspectiveWGPU creates a perspective projection matrix with WebGPU
// clip-space depth in [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func PerspectiveWGPU(fovY, aspect, near, far float32) mgl32.Mat4 {
	return depthZeroToOne.Mul4(mgl32.Perspective(fovY, aspect, near, far))
}

// OrthoWGPU creates an orthographic projection matrix with WebGPU clip-space
// depth in [0, 1]. Used for light-space projections when building the deep
// shadow map.
//
// Parameters:
//   - left, right, bottom, top: frustum extents in world units
//   - near, far: clipping plane distances
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func OrthoWGPU(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	return depthZeroToOne.Mul4(mgl32.Ortho(left, right, bottom, top, near, far))
}

// Clamp returns v clamped to the [lo, hi] range.
//
// Parameters:
//   - v: the value to clamp
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - float32: the clamped value
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

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
