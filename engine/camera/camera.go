package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/strandworks/strand-go/common"
)

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
}

// Camera defines the interface for the viewer. It holds perspective settings
// plus position/target and recomputes view and projection matrices whenever
// either changes. The ray-tracing backend generates primary rays from the
// same matrices the rasterizer binds, which is what keeps the two backends
// pointed at the same image.
type Camera interface {
	// Position returns the world-space camera position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Target returns the world-space point the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the target
	Target() mgl32.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix, column-major
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current projection matrix with WebGPU
	// clip-space depth in [0, 1].
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix, column-major
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns the combined view-projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix, column-major
	ViewProjectionMatrix() mgl32.Mat4

	// SetPosition moves the camera and recomputes matrices.
	//
	// Parameters:
	//   - position: the new world-space position
	SetPosition(position mgl32.Vec3)

	// SetTarget repoints the camera and recomputes matrices.
	//
	// Parameters:
	//   - target: the new world-space look-at point
	SetTarget(target mgl32.Vec3)

	// SetFov sets the vertical field of view in radians and recomputes
	// matrices.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes
	// matrices. Called by the frame driver on surface resize.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// PrimaryRay computes the world-space ray through a pixel center. The
	// ray-tracing backend calls this for every pixel; the returned direction
	// is unit length.
	//
	// Parameters:
	//   - px: the pixel x coordinate
	//   - py: the pixel y coordinate
	//   - width: the framebuffer width in pixels
	//   - height: the framebuffer height in pixels
	//
	// Returns:
	//   - mgl32.Vec3: the ray origin (the camera position)
	//   - mgl32.Vec3: the unit ray direction
	PrimaryRay(px, py, width, height int) (mgl32.Vec3, mgl32.Vec3)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings and the
// provided options applied.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: mgl32.Vec3{0, 0, 3},
		target:   mgl32.Vec3{0, 0, 0},
		up:       mgl32.Vec3{0, 1, 0},
		fov:      mgl32.DegToRad(45),
		aspect:   1.0,
		near:     0.1,
		far:      100.0,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) SetPosition(position mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) PrimaryRay(px, py, width, height int) (mgl32.Vec3, mgl32.Vec3) {
	c.mu.Lock()
	view := c.viewMatrix
	position := c.position
	fov := c.fov
	aspect := c.aspect
	c.mu.Unlock()

	// NDC at the pixel center, y up.
	ndcX := (2*(float32(px)+0.5)/float32(width) - 1) * aspect
	ndcY := 1 - 2*(float32(py)+0.5)/float32(height)

	tanHalf := math32.Tan(fov * 0.5)

	// Camera-space direction through the pixel, rotated into world space by
	// the transposed rotation block of the view matrix.
	camDir := mgl32.Vec3{ndcX * tanHalf, ndcY * tanHalf, -1}
	right := mgl32.Vec3{view.At(0, 0), view.At(0, 1), view.At(0, 2)}
	up := mgl32.Vec3{view.At(1, 0), view.At(1, 1), view.At(1, 2)}
	forward := mgl32.Vec3{view.At(2, 0), view.At(2, 1), view.At(2, 2)}

	world := right.Mul(camDir.X()).Add(up.Mul(camDir.Y())).Add(forward.Mul(camDir.Z()))
	return position, world.Normalize()
}

// updateMatrices recalculates the view, projection, and view-projection
// matrices. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = mgl32.LookAtV(c.position, c.target, c.up)
	c.projectionMatrix = common.PerspectiveWGPU(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
