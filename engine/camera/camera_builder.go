package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption defines a function that modifies the cameraImpl during
// construction.
type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the initial world-space position.
//
// Parameters:
//   - position: the position
//
// Returns:
//   - CameraBuilderOption: a function that applies the position to the camera
func WithPosition(position mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = position
	}
}

// WithTarget sets the initial world-space look-at point.
//
// Parameters:
//   - target: the target
//
// Returns:
//   - CameraBuilderOption: a function that applies the target to the camera
func WithTarget(target mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = target
	}
}

// WithUp sets the up vector.
//
// Parameters:
//   - up: the up vector
//
// Returns:
//   - CameraBuilderOption: a function that applies the up vector to the camera
func WithUp(up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithPerspective sets the projection parameters.
//
// Parameters:
//   - fov: vertical field of view in radians (must be > 0)
//   - aspect: viewport aspect ratio (must be > 0)
//   - near: near plane distance (must be > 0)
//   - far: far plane distance (must be > near)
//
// Returns:
//   - CameraBuilderOption: a function that applies the projection to the camera
func WithPerspective(fov, aspect, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if fov > 0 {
			c.fov = fov
		}
		if aspect > 0 {
			c.aspect = aspect
		}
		if near > 0 {
			c.near = near
		}
		if far > near {
			c.far = far
		}
	}
}
