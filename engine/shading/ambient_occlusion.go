package shading

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/strandworks/strand-go/common"
	"github.com/strandworks/strand-go/engine/volume"
)

// goldenAngle spaces successive sphere samples for an even angular
// distribution (Fibonacci sphere).
const goldenAngle = 2.39996323

// LocalAmbientOcclusion estimates how much nearby strand geometry occludes a
// world position by sampling the density volume over concentric spherical
// shells. sampleCount samples are distributed across radiusSteps shells whose
// radius grows by stepScale per shell; each sample's density contributes to
// occlusion only above densityThreshold. Samples falling outside the volume
// contribute zero density, so positions far from the hair read as fully
// unoccluded.
//
// Parameters:
//   - v: the frame's frozen density volume
//   - world: the world-space shading position
//   - radiusSteps: the number of concentric shells, >= 1
//   - stepScale: the world-space radius increment per shell
//   - sampleCount: the total number of volume samples, >= 1
//   - densityThreshold: the density below which a sample is ignored
//
// Returns:
//   - float32: visibility in [0, 1], 1 = fully unoccluded
func LocalAmbientOcclusion(v volume.DensityVolume, world mgl32.Vec3, radiusSteps int, stepScale float32, sampleCount int, densityThreshold float32) float32 {
	samplesPerShell := sampleCount / radiusSteps
	if samplesPerShell < 1 {
		samplesPerShell = 1
	}

	accum := float32(0)
	taken := 0
	for shell := 1; shell <= radiusSteps; shell++ {
		radius := float32(shell) * stepScale
		for i := 0; i < samplesPerShell; i++ {
			dir := fibonacciDirection(i, samplesPerShell)
			density := v.Sample(world.Add(dir.Mul(radius)))
			if density > densityThreshold {
				accum += density
			}
			taken++
		}
	}

	return common.Clamp(1-accum/float32(taken), 0, 1)
}

// fibonacciDirection returns the i-th of n roughly uniform unit directions
// on the sphere.
func fibonacciDirection(i, n int) mgl32.Vec3 {
	y := 1 - 2*(float32(i)+0.5)/float32(n)
	r := math32.Sqrt(math32.Max(0, 1-y*y))
	phi := float32(i) * goldenAngle
	return mgl32.Vec3{r * math32.Cos(phi), y, r * math32.Sin(phi)}
}
