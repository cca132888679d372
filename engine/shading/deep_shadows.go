package shading

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/strandworks/strand-go/common"
	"github.com/strandworks/strand-go/engine/light"
)

// ApproximateDeepShadows estimates how much light reaches a world position
// through the hair volume. The position is projected into the light's shadow
// space; a kernelSize x kernelSize block of texels spaced stride apart is
// gathered around the projected texel, the accumulated densities are box
// filtered, and the average is mapped through a linear scale/bias falloff.
// Positions that project outside the map are fully lit: an out-of-range
// sample is an expected boundary condition, never an error.
//
// Parameters:
//   - m: the frame's frozen deep shadow map
//   - world: the world-space shading position
//   - kernelSize: the kernel width in samples, >= 1
//   - stride: the texel spacing between kernel samples, >= 1
//   - scale: the density-to-occlusion falloff slope
//   - bias: the density subtracted before the falloff, absorbing a strand's
//     self-occlusion
//
// Returns:
//   - float32: visibility in [0, 1], 1 = fully lit
func ApproximateDeepShadows(m light.DeepShadowMap, world mgl32.Vec3, kernelSize, stride int, scale, bias float32) float32 {
	x, y, depth, ok := m.Project(world)
	if !ok {
		return 1
	}

	half := kernelSize / 2
	accum := float32(0)
	for ky := 0; ky < kernelSize; ky++ {
		for kx := 0; kx < kernelSize; kx++ {
			sx := int(x) + (kx-half)*stride
			sy := int(y) + (ky-half)*stride
			accum += m.DensityAt(sx, sy, depth)
		}
	}
	average := accum / float32(kernelSize*kernelSize)

	occlusion := scale * (average - bias)
	return common.Clamp(1-occlusion, 0, 1)
}
