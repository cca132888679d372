package shading

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/strandworks/strand-go/engine/volume"
)

// GPUShadingParamsSource is the canonical WGSL definition of the
// ShadingParams struct. Matches GPUShadingParams layout exactly (96 bytes,
// std430 aligned).
//
//go:embed assets/shading_params.wgsl
var GPUShadingParamsSource string

// GPUShadingParams is the GPU-aligned bundle of material, occlusion toggles,
// and volume placement consumed by the rasterizer's fragment stage each
// frame. Matches the WGSL ShadingParams struct layout exactly (see
// GPUShadingParamsSource). Size: 96 bytes (std430 / WGSL aligned).
//
// Layout:
//
//	vec4<f32> volume_origin  (16 bytes, offset  0): xyz = origin, w = ao density threshold
//	vec4<f32> volume_size    (16 bytes, offset 16): xyz = size, w = ao step scale
//	vec4<f32> diffuse        (16 bytes, offset 32): rgb = diffuse, w = specular exponent
//	vec4<f32> specular       (16 bytes, offset 48): rgb = specular, w unused
//	4 x u32                  (16 bytes, offset 64): kernel size, stride, sample shadows, sample ao
//	2 x f32 + 2 x u32        (16 bytes, offset 80): shadow scale, shadow bias, ao radius steps, ao sample count
type GPUShadingParams struct {
	VolumeOrigin  [4]float32 // offset  0: density volume origin, w = AO density threshold
	VolumeSize    [4]float32 // offset 16: density volume size, w = AO step scale
	Diffuse       [4]float32 // offset 32: diffuse RGB, w = specular exponent
	Specular      [4]float32 // offset 48: specular RGB, w unused
	KernelSize    uint32     // offset 64: deep-shadow kernel width in samples
	Stride        uint32     // offset 68: texel spacing between kernel samples
	SampleShadows uint32     // offset 72: 1 = deep-shadow module active this frame
	SampleAO      uint32     // offset 76: 1 = ambient-occlusion module active this frame
	ShadowScale   float32    // offset 80: density-to-occlusion falloff slope
	ShadowBias    float32    // offset 84: density subtracted before the falloff
	AORadiusSteps uint32     // offset 88: concentric AO shell count
	AOSampleCount uint32     // offset 92: total AO sample count
}

// Size returns the size of the GPUShadingParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUShadingParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUShadingParams struct into a byte buffer suitable
// for GPU upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload
func (g *GPUShadingParams) Marshal() []byte {
	buf := make([]byte, 96)
	for i, f := range g.VolumeOrigin {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	for i, f := range g.VolumeSize {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(f))
	}
	for i, f := range g.Diffuse {
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(f))
	}
	for i, f := range g.Specular {
		binary.LittleEndian.PutUint32(buf[48+i*4:], math.Float32bits(f))
	}
	binary.LittleEndian.PutUint32(buf[64:], g.KernelSize)
	binary.LittleEndian.PutUint32(buf[68:], g.Stride)
	binary.LittleEndian.PutUint32(buf[72:], g.SampleShadows)
	binary.LittleEndian.PutUint32(buf[76:], g.SampleAO)
	binary.LittleEndian.PutUint32(buf[80:], math.Float32bits(g.ShadowScale))
	binary.LittleEndian.PutUint32(buf[84:], math.Float32bits(g.ShadowBias))
	binary.LittleEndian.PutUint32(buf[88:], g.AORadiusSteps)
	binary.LittleEndian.PutUint32(buf[92:], g.AOSampleCount)
	return buf
}

// BuildGPUShadingParams fills a GPUShadingParams from the frame's material,
// toggles, resolved mode, and density volume placement.
//
// Parameters:
//   - material: the strand reflectance parameters
//   - params: the validated occlusion sampling toggles
//   - mode: the frame's shading mode
//   - v: the density volume whose placement the fragment stage samples in
//
// Returns:
//   - GPUShadingParams: the GPU-aligned representation
func BuildGPUShadingParams(material Material, params Params, mode Mode, v volume.DensityVolume) GPUShadingParams {
	sampleShadows, sampleAO := mode.resolve()
	origin := v.Origin()
	size := v.Size()
	return GPUShadingParams{
		VolumeOrigin:  [4]float32{origin.X(), origin.Y(), origin.Z(), params.AODensityThreshold},
		VolumeSize:    [4]float32{size.X(), size.Y(), size.Z(), params.AOStepScale},
		Diffuse:       [4]float32{material.Diffuse.X(), material.Diffuse.Y(), material.Diffuse.Z(), material.Exponent},
		Specular:      [4]float32{material.Specular.X(), material.Specular.Y(), material.Specular.Z(), 0},
		KernelSize:    uint32(params.KernelSize),
		Stride:        uint32(params.Stride),
		SampleShadows: boolUint(sampleShadows),
		SampleAO:      boolUint(sampleAO),
		ShadowScale:   params.ShadowScale,
		ShadowBias:    params.ShadowBias,
		AORadiusSteps: uint32(params.AORadiusSteps),
		AOSampleCount: uint32(params.AOSampleCount),
	}
}

func boolUint(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
