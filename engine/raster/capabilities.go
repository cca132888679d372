package raster

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Capabilities is a snapshot of the surface/adapter capabilities the backend
// negotiates once per process: the supported surface formats, alpha modes,
// and present modes. Looked up once, then reused across scene loads until
// explicitly invalidated (e.g. after an adapter change).
type Capabilities struct {
	// SurfaceFormats lists the supported swapchain formats, preferred first.
	SurfaceFormats []wgpu.TextureFormat
	// AlphaModes lists the supported composite alpha modes, preferred first.
	AlphaModes []wgpu.CompositeAlphaMode
	// PresentModes lists the supported presentation modes.
	PresentModes []wgpu.PresentMode
}

var capsMu sync.Mutex
var cachedCaps *Capabilities

// CachedCapabilities returns the process-wide capability snapshot, querying
// the surface on first use. Initialization is explicit and one-time: repeat
// calls return the cached snapshot without touching the adapter.
//
// Parameters:
//   - surface: the WebGPU surface to query on first use
//   - adapter: the adapter the surface is queried against
//
// Returns:
//   - *Capabilities: the cached snapshot
func CachedCapabilities(surface *wgpu.Surface, adapter *wgpu.Adapter) *Capabilities {
	capsMu.Lock()
	defer capsMu.Unlock()
	if cachedCaps == nil {
		caps := surface.GetCapabilities(adapter)
		cachedCaps = &Capabilities{
			SurfaceFormats: caps.Formats,
			AlphaModes:     caps.AlphaModes,
			PresentModes:   caps.PresentModes,
		}
	}
	return cachedCaps
}

// InvalidateCapabilities drops the cached snapshot so the next
// CachedCapabilities call re-queries the adapter. Call after recreating the
// surface or switching adapters.
func InvalidateCapabilities() {
	capsMu.Lock()
	defer capsMu.Unlock()
	cachedCaps = nil
}
