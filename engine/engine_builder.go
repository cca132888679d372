package engine

import (
	"github.com/strandworks/strand-go/engine/raster"
	"github.com/strandworks/strand-go/engine/renderer"
	"github.com/strandworks/strand-go/engine/window"
)

// engineConfig collects options that have to be forwarded to components the
// engine constructs itself (window, backend, renderer).
type engineConfig struct {
	windowOptions   []window.WindowBuilderOption
	backendOptions  []raster.BackendOption
	rendererOptions []renderer.RendererOption
}

// EngineBuilderOption is a functional option for configuring an Engine during creation.
type EngineBuilderOption func(*viewerEngine, *engineConfig)

// WithWindow provides a pre-built window instead of letting the engine
// create one. Window options passed via WithWindowOptions are ignored.
//
// Parameters:
//   - w: the window to use
//
// Returns:
//   - EngineBuilderOption: the option to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *viewerEngine, _ *engineConfig) {
		if w != nil {
			e.window = w
		}
	}
}

// WithWindowOptions forwards options to the window the engine creates.
//
// Parameters:
//   - options: window options to forward
//
// Returns:
//   - EngineBuilderOption: the option to apply
func WithWindowOptions(options ...window.WindowBuilderOption) EngineBuilderOption {
	return func(_ *viewerEngine, cfg *engineConfig) {
		cfg.windowOptions = append(cfg.windowOptions, options...)
	}
}

// WithBackendOptions forwards options to the rasterization backend the
// engine creates against the window surface.
//
// Parameters:
//   - options: backend options to forward
//
// Returns:
//   - EngineBuilderOption: the option to apply
func WithBackendOptions(options ...raster.BackendOption) EngineBuilderOption {
	return func(_ *viewerEngine, cfg *engineConfig) {
		cfg.backendOptions = append(cfg.backendOptions, options...)
	}
}

// WithRendererOptions forwards options to the renderer the engine creates,
// e.g. the light, material, or initial backend.
//
// Parameters:
//   - options: renderer options to forward
//
// Returns:
//   - EngineBuilderOption: the option to apply
func WithRendererOptions(options ...renderer.RendererOption) EngineBuilderOption {
	return func(_ *viewerEngine, cfg *engineConfig) {
		cfg.rendererOptions = append(cfg.rendererOptions, options...)
	}
}

// WithRenderer provides a pre-built renderer instead of letting the engine
// construct one from the window surface. Intended for tests and headless use.
//
// Parameters:
//   - r: the renderer to use
//
// Returns:
//   - EngineBuilderOption: the option to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *viewerEngine, _ *engineConfig) {
		if r != nil {
			e.renderer = r
		}
	}
}

// WithProfiling enables profiler output from the first frame.
//
// Returns:
//   - EngineBuilderOption: the option to apply
func WithProfiling() EngineBuilderOption {
	return func(e *viewerEngine, _ *engineConfig) {
		e.profilingEnabled = true
	}
}
