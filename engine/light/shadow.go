package light

// DefaultShadowMapResolution is the default width and height in texels of
// each deep shadow map layer. Overridable via WithShadowMapResolution.
const DefaultShadowMapResolution = 1024

// DefaultShadowMapLayers is the default number of depth layers in the deep
// shadow map. Each layer covers an equal slice of light-space depth.
const DefaultShadowMapLayers = 16

// DefaultStrandOpacity is the density contribution of a single strand sample
// splatted into a shadow map texel. Dense hair saturates toward full
// occlusion after roughly 1/DefaultStrandOpacity overlapping strands.
const DefaultStrandOpacity float32 = 0.15
