package shading

import "fmt"

// Params holds the externally configurable occlusion sampling toggles. Zero
// values are invalid; NewParams supplies working defaults and the builder
// options override them.
type Params struct {
	// KernelSize is the deep-shadow kernel width in samples.
	KernelSize int
	// Stride is the texel spacing between deep-shadow kernel samples.
	Stride int
	// ShadowScale is the density-to-occlusion falloff slope.
	ShadowScale float32
	// ShadowBias is the density subtracted before the shadow falloff.
	ShadowBias float32
	// AORadiusSteps is the number of concentric ambient-occlusion shells.
	AORadiusSteps int
	// AOStepScale is the world-space radius increment per shell.
	AOStepScale float32
	// AOSampleCount is the total number of density volume samples.
	AOSampleCount int
	// AODensityThreshold is the density below which an AO sample is ignored.
	AODensityThreshold float32
}

// NewParams creates Params with the package defaults and the provided
// options applied.
//
// Parameters:
//   - options: a variadic list of ParamsOption functions to configure the params
//
// Returns:
//   - Params: the configured params
func NewParams(options ...ParamsOption) Params {
	p := Params{
		KernelSize:         3,
		Stride:             1,
		ShadowScale:        1.0,
		ShadowBias:         0.05,
		AORadiusSteps:      3,
		AOStepScale:        0.01,
		AOSampleCount:      24,
		AODensityThreshold: 0.01,
	}
	for _, opt := range options {
		opt(&p)
	}
	return p
}

// Validate checks that every toggle that must be positive is positive.
//
// Returns:
//   - error: a descriptive error for the first invalid field, or nil
func (p Params) Validate() error {
	switch {
	case p.KernelSize < 1:
		return fmt.Errorf("shading params: kernel size must be >= 1, got %d", p.KernelSize)
	case p.Stride < 1:
		return fmt.Errorf("shading params: stride must be >= 1, got %d", p.Stride)
	case p.AORadiusSteps < 1:
		return fmt.Errorf("shading params: ao radius steps must be >= 1, got %d", p.AORadiusSteps)
	case p.AOStepScale <= 0:
		return fmt.Errorf("shading params: ao step scale must be > 0, got %v", p.AOStepScale)
	case p.AOSampleCount < 1:
		return fmt.Errorf("shading params: ao sample count must be >= 1, got %d", p.AOSampleCount)
	case p.AODensityThreshold < 0:
		return fmt.Errorf("shading params: ao density threshold must be >= 0, got %v", p.AODensityThreshold)
	}
	return nil
}

// ParamsOption defines a function that modifies Params during construction.
type ParamsOption func(*Params)

// WithShadowKernel sets the deep-shadow kernel size and stride.
//
// Parameters:
//   - kernelSize: the kernel width in samples
//   - stride: the texel spacing between samples
//
// Returns:
//   - ParamsOption: a function that applies the kernel settings
func WithShadowKernel(kernelSize, stride int) ParamsOption {
	return func(p *Params) {
		p.KernelSize = kernelSize
		p.Stride = stride
	}
}

// WithShadowFalloff sets the deep-shadow scale and bias mapping.
//
// Parameters:
//   - scale: the falloff slope
//   - bias: the density subtracted before the falloff
//
// Returns:
//   - ParamsOption: a function that applies the falloff settings
func WithShadowFalloff(scale, bias float32) ParamsOption {
	return func(p *Params) {
		p.ShadowScale = scale
		p.ShadowBias = bias
	}
}

// WithAmbientOcclusion sets the ambient-occlusion sampling pattern.
//
// Parameters:
//   - radiusSteps: the number of concentric shells
//   - stepScale: the world-space radius increment per shell
//   - sampleCount: the total number of samples
//   - densityThreshold: the density below which a sample is ignored
//
// Returns:
//   - ParamsOption: a function that applies the AO settings
func WithAmbientOcclusion(radiusSteps int, stepScale float32, sampleCount int, densityThreshold float32) ParamsOption {
	return func(p *Params) {
		p.AORadiusSteps = radiusSteps
		p.AOStepScale = stepScale
		p.AOSampleCount = sampleCount
		p.AODensityThreshold = densityThreshold
	}
}
