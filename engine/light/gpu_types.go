package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPULightSource is the canonical WGSL definition of the Light struct.
// Matches GPULight layout exactly (112 bytes, std430 aligned).
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the GPU-aligned representation of the primary light source.
// Matches the WGSL Light struct layout exactly (see GPULightSource).
// Size: 112 bytes (std430 / WGSL aligned).
//
// Layout:
//
//	mat4x4<f32> view_projection  (64 bytes, offset  0): light-space transform for shadow sampling
//	vec4<f32>   position_type    (16 bytes, offset 64): xyz = world position, w = light type
//	vec4<f32>   direction        (16 bytes, offset 80): xyz = normalized direction, w unused
//	vec4<f32>   color_intensity  (16 bytes, offset 96): rgb = color, w = intensity
type GPULight struct {
	ViewProjection [16]float32 // offset  0: light-space view-projection, column-major
	PositionType   [4]float32  // offset 64: world position, w = 0 directional / 1 point
	Direction      [4]float32  // offset 80: normalized direction toward the scene
	ColorIntensity [4]float32  // offset 96: RGB color, w = intensity
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (112)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU
// upload.
//
// Returns:
//   - []byte: 112-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 112)
	for i, f := range g.ViewProjection {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	for i, f := range g.PositionType {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(f))
	}
	for i, f := range g.Direction {
		binary.LittleEndian.PutUint32(buf[80+i*4:], math.Float32bits(f))
	}
	for i, f := range g.ColorIntensity {
		binary.LittleEndian.PutUint32(buf[96+i*4:], math.Float32bits(f))
	}
	return buf
}

// BuildGPULight fills a GPULight from a Light and its light-space transform
// for the current frame.
//
// Parameters:
//   - l: the light to marshal
//   - viewProjection: the frame's light-space view-projection matrix
//
// Returns:
//   - GPULight: the GPU-aligned representation
func BuildGPULight(l Light, viewProjection mgl32.Mat4) GPULight {
	pos := l.Position()
	dir := l.Direction()
	col := l.Color()
	return GPULight{
		ViewProjection: viewProjection,
		PositionType:   [4]float32{pos.X(), pos.Y(), pos.Z(), float32(l.Type())},
		Direction:      [4]float32{dir.X(), dir.Y(), dir.Z(), 0},
		ColorIntensity: [4]float32{col.X(), col.Y(), col.Z(), l.Intensity()},
	}
}
