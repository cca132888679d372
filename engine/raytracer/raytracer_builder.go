package raytracer

import "github.com/go-gl/mathgl/mgl32"

// RaytracerOption is a functional option for configuring a Raytracer during creation.
type RaytracerOption func(*raytracerImpl)

// WithWorkers sets the worker pool size. Defaults to NumCPU-1 with a floor
// of one. Values below one are ignored.
//
// Parameters:
//   - workers: the number of concurrent tile workers
//
// Returns:
//   - RaytracerOption: the option to apply
func WithWorkers(workers int) RaytracerOption {
	return func(r *raytracerImpl) {
		if workers >= 1 {
			r.workers = workers
		}
	}
}

// WithTileSize sets the square tile edge in pixels. Defaults to 32. Values
// below one are ignored.
//
// Parameters:
//   - tileSize: the tile edge in pixels
//
// Returns:
//   - RaytracerOption: the option to apply
func WithTileSize(tileSize int) RaytracerOption {
	return func(r *raytracerImpl) {
		if tileSize >= 1 {
			r.tileSize = tileSize
		}
	}
}

// WithBackground sets the miss color. Defaults to near-black, matching the
// rasterizer's clear color.
//
// Parameters:
//   - color: the linear background color
//
// Returns:
//   - RaytracerOption: the option to apply
func WithBackground(color mgl32.Vec3) RaytracerOption {
	return func(r *raytracerImpl) {
		r.background = color
	}
}
