package raster

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/strandworks/strand-go/common"
	"github.com/strandworks/strand-go/engine/light"
	"github.com/strandworks/strand-go/engine/shading"
)

// Software mirror of the fragment stage in assets/hair.wgsl, operation for
// operation, reading the exact uniform structs and staged texels the GPU
// binds. It exists to pin the shader's arithmetic against the analytic
// shading path without a device; it deliberately reimplements the math
// instead of calling into the shading package.

// ReferenceShade evaluates one fragment the way fs_main does: Kajiya-Kay
// strand reflectance modulated by the light color, the deep shadow term, and
// the ambient occlusion term, with the occlusion texels fetched from the
// staged buffers at the same integer coordinates the shader computes.
//
// Parameters:
//   - params: the marshaled frame parameter block
//   - lightUniform: the marshaled light block
//   - cameraPosition: world-space camera position
//   - worldPosition: world-space fragment position
//   - worldTangent: world-space strand tangent, unit length. Consumed as
//     given: fs_main's normalize only undoes raster interpolation and is an
//     identity for unit tangents, so re-normalizing here with a different
//     sqrt would perturb the specular base before pow amplifies it
//   - shadow: staged deep shadow map texels, layer-major r32float
//   - volume: staged density volume texels, r8unorm
//
// Returns:
//   - mgl32.Vec3: the shaded fragment color before swapchain encoding
func ReferenceShade(
	params shading.GPUShadingParams,
	lightUniform light.GPULight,
	cameraPosition mgl32.Vec3,
	worldPosition mgl32.Vec3,
	worldTangent mgl32.Vec3,
	shadow common.TextureStagingData,
	volume common.TextureStagingData,
) mgl32.Vec3 {
	tangent := worldTangent
	eyeDir := cameraPosition.Sub(worldPosition).Normalize()

	var lightDir mgl32.Vec3
	if lightUniform.PositionType[3] == 0 {
		lightDir = mgl32.Vec3{
			-lightUniform.Direction[0],
			-lightUniform.Direction[1],
			-lightUniform.Direction[2],
		}
	} else {
		lightDir = mgl32.Vec3{
			lightUniform.PositionType[0] - worldPosition.X(),
			lightUniform.PositionType[1] - worldPosition.Y(),
			lightUniform.PositionType[2] - worldPosition.Z(),
		}.Normalize()
	}

	diffuse := mgl32.Vec3{params.Diffuse[0], params.Diffuse[1], params.Diffuse[2]}
	specular := mgl32.Vec3{params.Specular[0], params.Specular[1], params.Specular[2]}
	radiance := referenceKajiyaKay(diffuse, specular, params.Diffuse[3], tangent, lightDir, eyeDir)

	lightColor := mgl32.Vec3{
		lightUniform.ColorIntensity[0] * lightUniform.ColorIntensity[3],
		lightUniform.ColorIntensity[1] * lightUniform.ColorIntensity[3],
		lightUniform.ColorIntensity[2] * lightUniform.ColorIntensity[3],
	}
	radiance = mgl32.Vec3{
		radiance.X() * lightColor.X(),
		radiance.Y() * lightColor.Y(),
		radiance.Z() * lightColor.Z(),
	}

	occlusion := float32(1.0)
	if params.SampleShadows != 0 {
		occlusion *= referenceDeepShadows(params, lightUniform.ViewProjection, worldPosition, shadow)
	}
	if params.SampleAO != 0 {
		occlusion *= referenceAmbientOcclusion(params, worldPosition, volume)
	}

	return radiance.Mul(occlusion)
}

func referenceKajiyaKay(diffuse, specular mgl32.Vec3, exponent float32, t, l, e mgl32.Vec3) mgl32.Vec3 {
	cosTL := l.Dot(t)
	cosTE := e.Dot(t)
	sinTL := math32.Sqrt(math32.Max(0, 1-cosTL*cosTL))
	sinTE := math32.Sqrt(math32.Max(0, 1-cosTE*cosTE))
	base := math32.Max(0, cosTL*cosTE+sinTL*sinTE)
	specularTerm := common.Clamp(math32.Pow(base, exponent), 0, 1)
	return diffuse.Mul(sinTL).Add(specular.Mul(specularTerm))
}

func referenceDeepShadows(params shading.GPUShadingParams, viewProjection [16]float32, worldPosition mgl32.Vec3, shadow common.TextureStagingData) float32 {
	clip := mulColumnMajor(viewProjection, worldPosition)
	if clip[3] <= 0 {
		return 1
	}
	ndcX := clip[0] / clip[3]
	ndcY := clip[1] / clip[3]
	ndcZ := clip[2] / clip[3]
	if ndcX < -1 || ndcX >= 1 || ndcY < -1 || ndcY >= 1 || ndcZ < 0 || ndcZ > 1 {
		return 1
	}

	width := int(shadow.Width)
	height := int(shadow.Height)
	layerCount := int(shadow.Depth)
	texelX := int((ndcX*0.5 + 0.5) * float32(width))
	texelY := int((ndcY*0.5 + 0.5) * float32(height))
	layer := int(common.Clamp(ndcZ, 0, 1) * float32(layerCount))
	if layer > layerCount-1 {
		layer = layerCount - 1
	}

	kernel := int(params.KernelSize)
	stride := int(params.Stride)
	center := kernel / 2
	var accum float32
	for ky := 0; ky < kernel; ky++ {
		for kx := 0; kx < kernel; kx++ {
			sx := texelX + (kx-center)*stride
			sy := texelY + (ky-center)*stride
			if sx >= 0 && sx < width && sy >= 0 && sy < height {
				accum += shadowTexel(shadow, sx, sy, layer)
			}
		}
	}
	average := accum / float32(kernel*kernel)

	return common.Clamp(1-params.ShadowScale*(average-params.ShadowBias), 0, 1)
}

func referenceAmbientOcclusion(params shading.GPUShadingParams, worldPosition mgl32.Vec3, volume common.TextureStagingData) float32 {
	radiusSteps := int(params.AORadiusSteps)
	samplesPerShell := int(params.AOSampleCount) / radiusSteps
	if samplesPerShell < 1 {
		samplesPerShell = 1
	}
	stepScale := params.VolumeSize[3]
	threshold := params.VolumeOrigin[3]

	var accum float32
	taken := 0
	for shell := 1; shell <= radiusSteps; shell++ {
		radius := float32(shell) * stepScale
		for i := 0; i < samplesPerShell; i++ {
			dir := referenceFibonacciDirection(i, samplesPerShell)
			density := densityTexel(params, worldPosition.Add(dir.Mul(radius)), volume)
			if density > threshold {
				accum += density
			}
			taken++
		}
	}
	return common.Clamp(1-accum/float32(taken), 0, 1)
}

const referenceGoldenAngle = 2.39996323

func referenceFibonacciDirection(i, n int) mgl32.Vec3 {
	y := 1 - 2*(float32(i)+0.5)/float32(n)
	r := math32.Sqrt(math32.Max(0, 1-y*y))
	phi := float32(i) * referenceGoldenAngle
	return mgl32.Vec3{r * math32.Cos(phi), y, r * math32.Sin(phi)}
}

func shadowTexel(shadow common.TextureStagingData, x, y, layer int) float32 {
	width := int(shadow.Width)
	height := int(shadow.Height)
	offset := (layer*height*width + y*width + x) * 4
	bits := binary.LittleEndian.Uint32(shadow.Texels[offset:])
	return math.Float32frombits(bits)
}

func densityTexel(params shading.GPUShadingParams, samplePosition mgl32.Vec3, volume common.TextureStagingData) float32 {
	normalized := [3]float32{
		(samplePosition.X() - params.VolumeOrigin[0]) / params.VolumeSize[0],
		(samplePosition.Y() - params.VolumeOrigin[1]) / params.VolumeSize[1],
		(samplePosition.Z() - params.VolumeOrigin[2]) / params.VolumeSize[2],
	}
	for _, n := range normalized {
		if n < 0 || n >= 1 {
			return 0
		}
	}
	width := int(volume.Width)
	height := int(volume.Height)
	x := int(normalized[0] * float32(volume.Width))
	y := int(normalized[1] * float32(volume.Height))
	z := int(normalized[2] * float32(volume.Depth))
	return float32(volume.Texels[(z*height+y)*width+x]) / 255.0
}

// mulColumnMajor applies a column-major 4x4 matrix to a point with w = 1.
func mulColumnMajor(m [16]float32, p mgl32.Vec3) [4]float32 {
	v := [4]float32{p.X(), p.Y(), p.Z(), 1}
	var out [4]float32
	for row := 0; row < 4; row++ {
		out[row] = m[row]*v[0] + m[4+row]*v[1] + m[8+row]*v[2] + m[12+row]*v[3]
	}
	return out
}
