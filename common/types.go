package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Texture formats shared between the CPU build steps and the rasterizer's
// binding validation. The build steps stage texels in these formats; the
// rasterizer rejects anything else with a binding error.
const (
	// DensityVolumeFormat is the texel format of the strand density volume.
	DensityVolumeFormat = wgpu.TextureFormatR8Unorm
	// DeepShadowMapFormat is the texel format of each deep shadow map layer.
	DeepShadowMapFormat = wgpu.TextureFormatR32Float
)

// TextureStagingData holds raw texel data for a texture binding pending GPU upload.
// Used by the rasterization backend to stage the deep shadow map (2D array) and
// the density volume (3D) before creating the GPU texture.
type TextureStagingData struct {
	// Texels is the byte slice holding the raw texel data in the format declared below.
	Texels []byte
	// Width is the width of the texture in texels.
	Width uint32
	// Height is the height of the texture in texels.
	Height uint32
	// Depth is the number of depth slices (3D textures) or array layers (2D arrays).
	// A value of 0 or 1 means a plain 2D texture.
	Depth uint32
	// Format is the wgpu texel format. BytesPerTexel must agree with it.
	Format wgpu.TextureFormat
	// BytesPerTexel is the stride of a single texel in Texels.
	BytesPerTexel uint32
}
