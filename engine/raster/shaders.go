package raster

import _ "embed"

// hairShaderSource is the strand forward pass. The uniform struct definitions
// it references are prepended from their canonical embedded sources at
// pipeline creation.
//
//go:embed assets/hair.wgsl
var hairShaderSource string

// blitShaderSource is the fullscreen pass used to present a CPU-produced
// framebuffer through the swapchain.
//
//go:embed assets/blit.wgsl
var blitShaderSource string
