package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/strandworks/strand-go/engine/camera"
	"github.com/strandworks/strand-go/engine/hair"
	"github.com/strandworks/strand-go/engine/light"
	"github.com/strandworks/strand-go/engine/raster"
	"github.com/strandworks/strand-go/engine/raytracer"
	"github.com/strandworks/strand-go/engine/shading"
	"github.com/strandworks/strand-go/engine/volume"
)

// BackendKind selects which backend renders the next frame.
type BackendKind int

const (
	// BackendRasterizer renders through the WebGPU strand pipeline.
	BackendRasterizer BackendKind = iota

	// BackendRaytracer traces the frame on the CPU and blits the result
	// through the rasterization backend's swapchain.
	BackendRaytracer
)

// String returns the backend name.
//
// Returns:
//   - string: the backend name
func (k BackendKind) String() string {
	switch k {
	case BackendRasterizer:
		return "rasterizer"
	case BackendRaytracer:
		return "raytracer"
	default:
		return fmt.Sprintf("BackendKind(%d)", int(k))
	}
}

type rendererImpl struct {
	mu *sync.Mutex

	backend raster.Backend
	tracer  raytracer.Raytracer

	geometry  *hair.Geometry
	shadowMap light.DeepShadowMap
	density   volume.DensityVolume

	lightSource light.Light
	material    shading.Material
	params      shading.Params
	mode        shading.Mode
	kind        BackendKind

	width  int
	height int
	fb     *raytracer.Framebuffer

	// Occlusion structures are rebuilt lazily at the top of a frame and
	// frozen for its duration. occlusionDirty is set by anything that moves
	// the light or replaces the geometry.
	occlusionDirty bool
}

// Renderer is the frame driver shared by both backends. It owns the
// occlusion structures (deep shadow map and density volume), rebuilds them
// once per frame when invalidated, freezes them, and hands both backends the
// same frozen inputs so a backend switch never changes the shading result.
type Renderer interface {
	// Attach builds the style's geometry and registers it with both
	// backends. The density volume is fit to the geometry's bounds and the
	// occlusion structures are scheduled for rebuild.
	//
	// Parameters:
	//   - style: the hair style to render
	//
	// Returns:
	//   - error: a *hair.GeometryError if the style is malformed, or a backend upload error
	Attach(style hair.HairStyle) error

	// Resize reconfigures the swapchain and the ray tracing framebuffer.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)

	// RenderFrame renders one frame with the active backend. Occlusion
	// structures are rebuilt first if invalidated, then frozen for the
	// frame. A *raster.ResourceBindingError skips the frame: the swapchain
	// presents the clear color and the error is returned.
	//
	// Parameters:
	//   - cam: the camera for this frame
	//
	// Returns:
	//   - error: nil on success, the frame-fatal error otherwise
	RenderFrame(cam camera.Camera) error

	// SetBackend selects the backend for subsequent frames.
	//
	// Parameters:
	//   - kind: the backend to use
	SetBackend(kind BackendKind)

	// Backend returns the active backend kind.
	//
	// Returns:
	//   - BackendKind: the active backend
	Backend() BackendKind

	// ToggleBackend switches between the rasterizer and the ray tracer.
	//
	// Returns:
	//   - BackendKind: the newly active backend
	ToggleBackend() BackendKind

	// SetMode selects how the occlusion terms combine for subsequent frames.
	//
	// Parameters:
	//   - mode: the shading mode
	//
	// Returns:
	//   - error: an error if the mode is not valid
	SetMode(mode shading.Mode) error

	// Mode returns the active shading mode.
	//
	// Returns:
	//   - shading.Mode: the active mode
	Mode() shading.Mode

	// Light returns the frame light source. Mutations through the returned
	// handle that move the light must be followed by InvalidateOcclusion.
	//
	// Returns:
	//   - light.Light: the light source
	Light() light.Light

	// InvalidateOcclusion schedules a rebuild of the deep shadow map and the
	// density volume at the start of the next frame.
	InvalidateOcclusion()

	// Release frees the GPU resources held by the rasterization backend.
	Release()
}

var _ Renderer = &rendererImpl{}

// NewRenderer creates a Renderer over an already-constructed rasterization
// backend, with the provided options applied.
//
// Parameters:
//   - backend: the rasterization backend, already surface-configured
//   - options: a variadic list of RendererOption functions to configure the renderer
//
// Returns:
//   - Renderer: a new Renderer instance
func NewRenderer(backend raster.Backend, options ...RendererOption) Renderer {
	r := &rendererImpl{
		mu:       &sync.Mutex{},
		backend:  backend,
		tracer:   raytracer.NewRaytracer(),
		material: shading.DefaultHairMaterial(),
		params:   shading.NewParams(),
		mode:     shading.ModeCombined,
		kind:     BackendRasterizer,
		lightSource: light.NewLight(light.LightTypeDirectional,
			light.WithDirection(mgl32.Vec3{0.3, -1, -0.2}.Normalize()),
		),
		shadowMap: light.NewDeepShadowMap(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *rendererImpl) Attach(style hair.HairStyle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := style.BuildGeometry()
	if err != nil {
		return err
	}

	if err := r.backend.Attach(g); err != nil {
		return err
	}
	if err := r.tracer.Attach(g); err != nil {
		return err
	}

	r.geometry = g
	r.density = volume.NewDensityVolumeForGeometry(g)
	r.occlusionDirty = true
	return nil
}

func (r *rendererImpl) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	r.width = width
	r.height = height
	r.backend.ConfigureSurface(width, height)
	r.fb = raytracer.NewFramebuffer(width, height)
}

func (r *rendererImpl) RenderFrame(cam camera.Camera) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.geometry == nil {
		return errors.New("renderer: no hair style attached")
	}
	if r.width == 0 || r.height == 0 {
		return errors.New("renderer: surface not sized — call Resize first")
	}

	if err := r.rebuildOcclusion(); err != nil {
		return err
	}

	evaluator, err := shading.NewFrameEvaluator(r.material, r.lightSource, r.shadowMap, r.density, r.mode, r.params)
	if err != nil {
		return err
	}

	if err := r.backend.BeginFrame(); err != nil {
		return err
	}

	var frameErr error
	switch r.kind {
	case BackendRaytracer:
		r.tracer.Render(r.fb, cam, r.lightSource, evaluator)
		frameErr = r.backend.Blit(r.fb.Pixels(), uint32(r.width), uint32(r.height))
	default:
		cameraUniform := camera.BuildGPUCameraUniform(cam)
		r.backend.UploadCamera(cameraUniform)
		r.backend.UploadLight(light.BuildGPULight(r.lightSource, r.shadowMap.ViewProjection()))
		r.backend.UploadShadingParams(shading.BuildGPUShadingParams(r.material, r.params, r.mode, r.density))
		frameErr = r.backend.DrawHair(mgl32.Ident4())
	}

	// A binding failure skips the draw; the pass still ends and presents the
	// clear color so the swapchain never stalls.
	r.backend.EndFrame()
	r.backend.Present()

	return frameErr
}

// rebuildOcclusion refreshes the frozen occlusion structures and pushes them
// to the GPU. Caller holds the mutex.
func (r *rendererImpl) rebuildOcclusion() error {
	if !r.occlusionDirty {
		return nil
	}

	boundsMin, boundsMax := r.geometry.Bounds()
	r.shadowMap.Build(r.geometry, r.lightSource.SpaceTransform(boundsMin, boundsMax))
	r.density.Clear()
	r.density.Voxelize(r.geometry)

	if err := r.backend.UploadShadowMap(r.shadowMap.Staging()); err != nil {
		return err
	}
	if err := r.backend.UploadDensityVolume(r.density.Staging()); err != nil {
		return err
	}

	r.occlusionDirty = false
	return nil
}

func (r *rendererImpl) SetBackend(kind BackendKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kind = kind
}

func (r *rendererImpl) Backend() BackendKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kind
}

func (r *rendererImpl) ToggleBackend() BackendKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.kind == BackendRasterizer {
		r.kind = BackendRaytracer
	} else {
		r.kind = BackendRasterizer
	}
	return r.kind
}

func (r *rendererImpl) SetMode(mode shading.Mode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !mode.Valid() {
		return fmt.Errorf("renderer: invalid shading mode %d", mode)
	}
	r.mode = mode
	return nil
}

func (r *rendererImpl) Mode() shading.Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

func (r *rendererImpl) Light() light.Light {
	return r.lightSource
}

func (r *rendererImpl) InvalidateOcclusion() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.occlusionDirty = true
}

func (r *rendererImpl) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}
