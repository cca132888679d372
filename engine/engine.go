package engine

import (
	"log"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/strandworks/strand-go/common"
	"github.com/strandworks/strand-go/engine/camera"
	"github.com/strandworks/strand-go/engine/hair"
	"github.com/strandworks/strand-go/engine/profiler"
	"github.com/strandworks/strand-go/engine/raster"
	"github.com/strandworks/strand-go/engine/renderer"
	"github.com/strandworks/strand-go/engine/shading"
	"github.com/strandworks/strand-go/engine/window"
)

// orbit limits: keep the camera off the poles so the view basis never
// degenerates, and off the target so the view matrix stays invertible.
const (
	minOrbitPitch    = -1.5
	maxOrbitPitch    = 1.5
	minOrbitDistance = 0.2
	maxOrbitDistance = 50
)

// viewerEngine implements the Engine interface. Coordinates the window
// message loop, the orbit camera, and the frame driver.
type viewerEngine struct {
	window   window.Window
	renderer renderer.Renderer
	camera   camera.Camera

	profiler         *profiler.Profiler
	profilingEnabled bool

	orbitTarget   mgl32.Vec3
	orbitYaw      float32
	orbitPitch    float32
	orbitDistance float32

	frameCallback func(deltaTime float32)
	keyCallback   func(keyCode uint32)
}

// Engine is the main entry point for the hair viewer. It owns the window,
// the orbit camera, and the renderer, wires input to camera and backend
// controls, and drives one RenderFrame per message-loop iteration.
//
// Default key bindings: Tab toggles the backend, 1/2/3 select the shading
// mode (combined, self-shadow only, ambient occlusion only), left-drag
// orbits, scroll dollies.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the frame driver.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// Camera returns the orbit camera.
	//
	// Returns:
	//   - camera.Camera: the camera instance
	Camera() camera.Camera

	// LoadStyle attaches a hair style to the renderer and frames the orbit
	// camera on its bounds.
	//
	// Parameters:
	//   - style: the hair style to view
	//
	// Returns:
	//   - error: an error if the style's geometry cannot be built
	LoadStyle(style hair.HairStyle) error

	// SetFrameCallback registers a function called once per frame before
	// rendering. Use it for light animation and other per-frame updates.
	//
	// Parameters:
	//   - callback: function receiving the frame delta in seconds
	SetFrameCallback(callback func(deltaTime float32))

	// SetKeyCallback registers a function called for key presses not
	// consumed by the built-in bindings. Registering directly on the window
	// would replace those bindings; this chains after them instead.
	//
	// Parameters:
	//   - callback: function receiving the pressed key code
	SetKeyCallback(callback func(keyCode uint32))

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Run starts the viewer loop (blocks until the window closes).
	Run()
}

var _ Engine = &viewerEngine{}

// NewEngine creates a new Engine with the provided options applied. The
// window is created first, the rasterization backend is built against its
// surface, and input callbacks are wired to the orbit camera and the
// renderer's runtime toggles.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &viewerEngine{
		profiler:      profiler.NewProfiler(),
		orbitTarget:   mgl32.Vec3{0, 0, 0},
		orbitYaw:      0,
		orbitPitch:    0.2,
		orbitDistance: 3,
	}
	cfg := &engineConfig{}
	for _, opt := range options {
		opt(e, cfg)
	}

	if e.window == nil {
		e.window = window.NewWindow(cfg.windowOptions...)
	}
	if e.renderer == nil {
		backend := raster.NewBackend(e.window.SurfaceDescriptor(), cfg.backendOptions...)
		e.renderer = renderer.NewRenderer(backend, cfg.rendererOptions...)
	}
	e.renderer.Resize(e.window.Width(), e.window.Height())

	e.camera = camera.NewCamera(
		camera.WithTarget(e.orbitTarget),
		camera.WithPosition(e.orbitPosition()),
	)
	e.camera.SetAspect(float32(e.window.Width()) / float32(e.window.Height()))

	e.wireInput()
	return e
}

func (e *viewerEngine) Window() window.Window {
	return e.window
}

func (e *viewerEngine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *viewerEngine) Camera() camera.Camera {
	return e.camera
}

func (e *viewerEngine) LoadStyle(style hair.HairStyle) error {
	if err := e.renderer.Attach(style); err != nil {
		return err
	}

	// Frame the orbit on the style: look at the bounds center from far
	// enough away that the whole style fits comfortably in view.
	g, err := style.BuildGeometry()
	if err != nil {
		return err
	}
	boundsMin, boundsMax := g.Bounds()
	center := boundsMin.Add(boundsMax).Mul(0.5)
	radius := boundsMax.Sub(center).Len()

	e.orbitTarget = center
	e.orbitDistance = common.Clamp(radius*2.5, minOrbitDistance, maxOrbitDistance)
	e.camera.SetTarget(center)
	e.camera.SetPosition(e.orbitPosition())
	return nil
}

func (e *viewerEngine) SetFrameCallback(callback func(deltaTime float32)) {
	e.frameCallback = callback
}

func (e *viewerEngine) SetKeyCallback(callback func(keyCode uint32)) {
	e.keyCallback = callback
}

func (e *viewerEngine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *viewerEngine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *viewerEngine) Run() {
	e.window.SetUpdateCallback(func(dt float32) {
		if e.frameCallback != nil {
			e.frameCallback(dt)
		}

		start := time.Now()
		if err := e.renderer.RenderFrame(e.camera); err != nil {
			log.Printf("frame skipped: %v", err)
		}
		if e.profilingEnabled {
			e.profiler.FrameDone(e.renderer.Backend().String(), time.Since(start))
		}
	})
	e.window.ProcessMessages()
}

// wireInput connects window events to the orbit camera and the renderer's
// runtime toggles.
func (e *viewerEngine) wireInput() {
	e.window.SetResizeCallback(func(width, height int) {
		e.renderer.Resize(width, height)
		if height > 0 {
			e.camera.SetAspect(float32(width) / float32(height))
		}
	})

	e.window.SetDragCallback(func(dx, dy float32) {
		e.orbitYaw -= dx * 0.01
		e.orbitPitch = common.Clamp(e.orbitPitch-dy*0.01, minOrbitPitch, maxOrbitPitch)
		e.camera.SetPosition(e.orbitPosition())
	})

	e.window.SetScrollCallback(func(delta float32) {
		e.orbitDistance = common.Clamp(e.orbitDistance*(1-delta*0.1), minOrbitDistance, maxOrbitDistance)
		e.camera.SetPosition(e.orbitPosition())
	})

	e.window.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case window.KeyTab:
			kind := e.renderer.ToggleBackend()
			log.Printf("backend: %s", kind)
		case window.KeyOne:
			_ = e.renderer.SetMode(shading.ModeCombined)
		case window.KeyTwo:
			_ = e.renderer.SetMode(shading.ModeSelfShadowOnly)
		case window.KeyThree:
			_ = e.renderer.SetMode(shading.ModeAmbientOcclusionOnly)
		default:
			if e.keyCallback != nil {
				e.keyCallback(keyCode)
			}
		}
	})
}

// orbitPosition converts the spherical orbit state to a camera position.
func (e *viewerEngine) orbitPosition() mgl32.Vec3 {
	cosPitch := math32.Cos(e.orbitPitch)
	return e.orbitTarget.Add(mgl32.Vec3{
		e.orbitDistance * cosPitch * math32.Sin(e.orbitYaw),
		e.orbitDistance * math32.Sin(e.orbitPitch),
		e.orbitDistance * cosPitch * math32.Cos(e.orbitYaw),
	})
}
