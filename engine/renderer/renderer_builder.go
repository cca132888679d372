package renderer

import (
	"github.com/strandworks/strand-go/engine/light"
	"github.com/strandworks/strand-go/engine/raytracer"
	"github.com/strandworks/strand-go/engine/shading"
)

// RendererOption is a functional option for configuring a Renderer during creation.
type RendererOption func(*rendererImpl)

// WithLight replaces the default directional light.
//
// Parameters:
//   - l: the light source to shade with
//
// Returns:
//   - RendererOption: the option to apply
func WithLight(l light.Light) RendererOption {
	return func(r *rendererImpl) {
		if l != nil {
			r.lightSource = l
		}
	}
}

// WithMaterial replaces the default hair material.
//
// Parameters:
//   - m: the strand reflectance parameters
//
// Returns:
//   - RendererOption: the option to apply
func WithMaterial(m shading.Material) RendererOption {
	return func(r *rendererImpl) {
		r.material = m
	}
}

// WithShadingParams replaces the default occlusion sampling parameters.
//
// Parameters:
//   - p: the occlusion sampling parameters
//
// Returns:
//   - RendererOption: the option to apply
func WithShadingParams(p shading.Params) RendererOption {
	return func(r *rendererImpl) {
		r.params = p
	}
}

// WithShadowMap replaces the default deep shadow map, e.g. to change its
// resolution or layer count.
//
// Parameters:
//   - m: the deep shadow map to build each frame
//
// Returns:
//   - RendererOption: the option to apply
func WithShadowMap(m light.DeepShadowMap) RendererOption {
	return func(r *rendererImpl) {
		if m != nil {
			r.shadowMap = m
		}
	}
}

// WithRaytracer replaces the default CPU ray tracer, e.g. to change its
// worker count or tile size.
//
// Parameters:
//   - t: the ray tracer to render with
//
// Returns:
//   - RendererOption: the option to apply
func WithRaytracer(t raytracer.Raytracer) RendererOption {
	return func(r *rendererImpl) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithInitialBackend selects the backend active before the first toggle.
//
// Parameters:
//   - kind: the backend to start with
//
// Returns:
//   - RendererOption: the option to apply
func WithInitialBackend(kind BackendKind) RendererOption {
	return func(r *rendererImpl) {
		r.kind = kind
	}
}

// WithInitialMode selects the shading mode active at startup.
//
// Parameters:
//   - mode: the shading mode, ignored when invalid
//
// Returns:
//   - RendererOption: the option to apply
func WithInitialMode(mode shading.Mode) RendererOption {
	return func(r *rendererImpl) {
		if mode.Valid() {
			r.mode = mode
		}
	}
}
