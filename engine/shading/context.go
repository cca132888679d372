package shading

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/strandworks/strand-go/engine/light"
	"github.com/strandworks/strand-go/engine/volume"
)

// Context is the ephemeral per-evaluation input bundle: constructed fresh
// for every fragment or ray hit, never persisted or shared.
type Context struct {
	// Position is the world-space shading position.
	Position mgl32.Vec3
	// Tangent is the interpolated unit strand tangent T.
	Tangent mgl32.Vec3
	// EyeDir is the unit vector E from the position toward the eye.
	EyeDir mgl32.Vec3
	// LightDir is the unit vector L from the position toward the light.
	LightDir mgl32.Vec3
}

// frameEvaluator is the implementation of the Evaluator interface.
type frameEvaluator struct {
	material   Material
	lightColor mgl32.Vec3
	shadowMap  light.DeepShadowMap
	density    volume.DensityVolume
	mode       Mode
	params     Params

	// Mode resolved once at construction; the per-invocation path never
	// re-checks the enum.
	sampleShadows bool
	sampleAO      bool
}

// Evaluator defines the interface for a frame's shading evaluation bundle.
// It captures the frozen shadow map, density volume, material, and resolved
// shading mode for one frame; Shade and Occlusion are pure with respect to
// that captured state and safe for concurrent use from worker goroutines.
type Evaluator interface {
	// Mode returns the shading mode the evaluator was resolved from.
	//
	// Returns:
	//   - Mode: the active mode
	Mode() Mode

	// Occlusion returns the combined occlusion at a world position: the
	// product of deep-shadow visibility and ambient-occlusion visibility,
	// with each factor forced to 1 when its module is disabled by the mode.
	//
	// Parameters:
	//   - world: the world-space shading position
	//
	// Returns:
	//   - float32: combined visibility in [0, 1]
	Occlusion(world mgl32.Vec3) float32

	// Shade evaluates the full shading pipeline for one invocation: the
	// Kajiya-Kay model modulated by the light color and intensity, then by
	// the combined occlusion at the context's position.
	//
	// Parameters:
	//   - ctx: the per-invocation shading context
	//
	// Returns:
	//   - mgl32.Vec3: the final radiance
	Shade(ctx Context) mgl32.Vec3
}

var _ Evaluator = &frameEvaluator{}

// NewFrameEvaluator creates the shading evaluator for one frame. The shadow
// map and density volume must be built and frozen for the frame before the
// evaluator is constructed; the evaluator only reads them.
//
// Parameters:
//   - material: the strand reflectance parameters
//   - l: the primary light
//   - shadowMap: the frame's frozen deep shadow map
//   - density: the frame's frozen density volume
//   - mode: the shading mode selecting which occlusion modules run
//   - params: the validated occlusion sampling toggles
//
// Returns:
//   - Evaluator: the frame evaluator
//   - error: when the mode is undefined or the params are invalid
func NewFrameEvaluator(material Material, l light.Light, shadowMap light.DeepShadowMap, density volume.DensityVolume, mode Mode, params Params) (Evaluator, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("shading: undefined mode %d", int(mode))
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	sampleShadows, sampleAO := mode.resolve()
	return &frameEvaluator{
		material:      material,
		lightColor:    l.Color().Mul(l.Intensity()),
		shadowMap:     shadowMap,
		density:       density,
		mode:          mode,
		params:        params,
		sampleShadows: sampleShadows && shadowMap != nil,
		sampleAO:      sampleAO && density != nil,
	}, nil
}

func (e *frameEvaluator) Mode() Mode {
	return e.mode
}

func (e *frameEvaluator) Occlusion(world mgl32.Vec3) float32 {
	occlusion := float32(1)
	if e.sampleShadows {
		occlusion *= ApproximateDeepShadows(e.shadowMap, world,
			e.params.KernelSize, e.params.Stride, e.params.ShadowScale, e.params.ShadowBias)
	}
	if e.sampleAO {
		occlusion *= LocalAmbientOcclusion(e.density, world,
			e.params.AORadiusSteps, e.params.AOStepScale, e.params.AOSampleCount, e.params.AODensityThreshold)
	}
	return occlusion
}

func (e *frameEvaluator) Shade(ctx Context) mgl32.Vec3 {
	radiance := KajiyaKay(e.material.Diffuse, e.material.Specular, e.material.Exponent,
		ctx.Tangent, ctx.LightDir, ctx.EyeDir)
	radiance = mulElem(radiance, e.lightColor)
	return radiance.Mul(e.Occlusion(ctx.Position))
}

// mulElem multiplies two vectors componentwise.
func mulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a.X() * b.X(), a.Y() * b.Y(), a.Z() * b.Z()}
}
