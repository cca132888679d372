package raster

import "github.com/cogentcore/webgpu/wgpu"

// BackendOption is a functional option for configuring a Backend during creation.
type BackendOption func(*rasterBackendImpl)

// WithForceFallbackAdapter forces the software fallback adapter, bypassing
// hardware adapters. Useful for headless environments and CI.
//
// Returns:
//   - BackendOption: the option to apply
func WithForceFallbackAdapter() BackendOption {
	return func(b *rasterBackendImpl) {
		b.forceFallbackAdapter = true
	}
}

// WithPresentMode sets the surface present mode used when the surface is
// configured. Defaults to wgpu.PresentModeFifo (vsync).
//
// Parameters:
//   - mode: the present mode to use
//
// Returns:
//   - BackendOption: the option to apply
func WithPresentMode(mode wgpu.PresentMode) BackendOption {
	return func(b *rasterBackendImpl) {
		b.presentMode = mode
	}
}

// WithClearColor sets the render pass clear color. Defaults to near-black.
//
// Parameters:
//   - color: the clear color
//
// Returns:
//   - BackendOption: the option to apply
func WithClearColor(color wgpu.Color) BackendOption {
	return func(b *rasterBackendImpl) {
		b.clearColor = color
	}
}
