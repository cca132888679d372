package raster

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUModelUniformSource is the canonical WGSL definition of the ModelUniform
// struct. Matches GPUModelUniform layout exactly (64 bytes, std430 aligned).
//
//go:embed assets/model_uniform.wgsl
var GPUModelUniformSource string

// GPUModelUniform is the per-draw constant block carrying the object's model
// transform. Matches the WGSL ModelUniform struct layout exactly (see
// GPUModelUniformSource). Size: 64 bytes (std430 / WGSL aligned).
type GPUModelUniform struct {
	Model [16]float32 // offset 0: object-to-world transform, column-major
}

// Size returns the size of the GPUModelUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUModelUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelUniform struct into a byte buffer suitable
// for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPUModelUniform) Marshal() []byte {
	buf := make([]byte, 64)
	for i, f := range g.Model {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// BuildGPUModelUniform fills a GPUModelUniform from a model matrix.
//
// Parameters:
//   - model: the object-to-world transform
//
// Returns:
//   - GPUModelUniform: the GPU-aligned representation
func BuildGPUModelUniform(model mgl32.Mat4) GPUModelUniform {
	return GPUModelUniform{Model: model}
}
