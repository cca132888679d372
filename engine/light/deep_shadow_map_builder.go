package light

// DeepShadowMapBuilderOption defines a function that modifies the
// deepShadowMap during construction.
type DeepShadowMapBuilderOption func(*deepShadowMap)

// WithShadowMapResolution sets the texel width and height of each layer.
// Non-positive values are ignored and the package default is kept.
//
// Parameters:
//   - resolution: texels per side (must be > 0)
//
// Returns:
//   - DeepShadowMapBuilderOption: a function that applies the resolution to the map
func WithShadowMapResolution(resolution int) DeepShadowMapBuilderOption {
	return func(m *deepShadowMap) {
		if resolution > 0 {
			m.width = resolution
			m.height = resolution
		}
	}
}

// WithShadowMapLayers sets the number of depth layers. Non-positive values
// are ignored and the package default is kept.
//
// Parameters:
//   - layers: the layer count (must be > 0)
//
// Returns:
//   - DeepShadowMapBuilderOption: a function that applies the layer count to the map
func WithShadowMapLayers(layers int) DeepShadowMapBuilderOption {
	return func(m *deepShadowMap) {
		if layers > 0 {
			m.layers = layers
		}
	}
}

// WithStrandOpacity sets the density contribution of a single strand sample.
// Non-positive values are ignored and the package default is kept.
//
// Parameters:
//   - opacity: the per-sample density increment (must be > 0)
//
// Returns:
//   - DeepShadowMapBuilderOption: a function that applies the opacity to the map
func WithStrandOpacity(opacity float32) DeepShadowMapBuilderOption {
	return func(m *deepShadowMap) {
		if opacity > 0 {
			m.strandOpacity = opacity
		}
	}
}
