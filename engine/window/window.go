package window

import (
	"fmt"
	"runtime"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling for the hair
// viewer. Wraps the GLFW implementation behind a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each frame of the message
	// loop with the elapsed time since the previous frame.
	//
	// Parameters:
	//   - callback: function receiving the frame delta in seconds (or nil to disable)
	SetUpdateCallback(callback func(dt float32))

	// SetResizeCallback sets the function called when the framebuffer is
	// resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events,
	// used to dolly the orbit camera.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = zoom in)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press events, used for
	// runtime toggles like switching the rendering backend.
	//
	// Parameters:
	//   - callback: function receiving the GLFW key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetDragCallback sets the callback for left-button mouse drags, used
	// to orbit the camera. Deltas are in pixels since the last event.
	//
	// Parameters:
	//   - callback: function receiving the drag delta
	SetDragCallback(callback func(dx, dy float32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for
	// creating a WebGPU surface for this window. Platform-appropriate
	// (Windows HWND, X11, Wayland, macOS Metal), created by the wgpuglfw
	// bridge.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor, or nil if the window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the close operation fails
	Close() error

	// ProcessMessages runs the window message loop. Blocks until the window
	// is closed, invoking the update callback each frame.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// viewerWindow is the implementation of the Window interface.
type viewerWindow struct {
	title  string
	width  int
	height int

	internalWindow any

	onUpdate func(dt float32)
	onResize func(width, height int)
	onScroll func(delta float32)
	onKey    func(keyCode uint32)
	onDrag   func(dx, dy float32)

	lastFrame time.Time
}

var _ Window = &viewerWindow{}

// NewWindow creates a new Window with the specified options. Applies default
// values first, then each option in order. Panics if the platform window
// cannot be created; a viewer with no window has nothing to do.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &viewerWindow{
		title:  "strand viewer",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *viewerWindow) SetUpdateCallback(callback func(dt float32)) {
	w.onUpdate = callback
}

func (w *viewerWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *viewerWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *viewerWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKey = callback
}

func (w *viewerWindow) SetDragCallback(callback func(dx, dy float32)) {
	w.onDrag = callback
}

func (w *viewerWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *viewerWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *viewerWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *viewerWindow) ProcessMessages() {
	w.lastFrame = time.Now()
	for w.IsRunning() {
		if ok := platformProcessMessages(w); !ok {
			break
		}

		now := time.Now()
		dt := float32(now.Sub(w.lastFrame).Seconds())
		w.lastFrame = now

		if w.onUpdate != nil {
			w.onUpdate(dt)
		}

		runtime.Gosched()
	}
}

func (w *viewerWindow) Width() int {
	return w.width
}

func (w *viewerWindow) Height() int {
	return w.height
}
