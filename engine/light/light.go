package light

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/strandworks/strand-go/common"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun. Affects all strands
	// uniformly with no distance attenuation.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a
	// position. The light vector at each shading point aims from the point
	// toward the light's position.
	LightTypePoint
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType LightType
	position  mgl32.Vec3
	direction mgl32.Vec3
	color     mgl32.Vec3
	intensity float32
	enabled   bool
}

// Light defines the interface for a light source. The shading evaluation
// assumes a single primary light; the deep shadow map is built in this
// light's space each frame.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional or point)
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for directional lights.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Direction returns the normalized direction the light points, from the
	// light toward the scene. Meaningless for point lights.
	//
	// Returns:
	//   - mgl32.Vec3: the normalized direction
	Direction() mgl32.Vec3

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Enabled returns whether this light is active for rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// VectorTo returns the normalized light vector L at a shading point: the
	// direction from the point toward the light.
	//
	// Parameters:
	//   - world: the world-space shading position
	//
	// Returns:
	//   - mgl32.Vec3: the normalized light vector
	VectorTo(world mgl32.Vec3) mgl32.Vec3

	// SpaceTransform builds the light-space view-projection matrix covering
	// the given world-space bounding box, with WebGPU clip-space depth in
	// [0, 1]. The deep shadow map is built and sampled in this space.
	//
	// Parameters:
	//   - boundsMin: minimum corner of the world-space AABB to cover
	//   - boundsMax: maximum corner of the world-space AABB to cover
	//
	// Returns:
	//   - mgl32.Mat4: the light-space view-projection matrix
	SpaceTransform(boundsMin, boundsMax mgl32.Vec3) mgl32.Mat4

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - position: the new position
	SetPosition(position mgl32.Vec3)

	// SetDirection sets the direction of the light and normalizes it.
	//
	// Parameters:
	//   - direction: the new direction (will be normalized)
	SetDirection(direction mgl32.Vec3)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - color: color as (r, g, b)
	SetColor(color mgl32.Vec3)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults
// and any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create (directional or point)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		position:  mgl32.Vec3{0, 1, 0},
		direction: mgl32.Vec3{0, -1, 0},
		color:     mgl32.Vec3{1, 1, 1},
		intensity: 1.0,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) VectorTo(world mgl32.Vec3) mgl32.Vec3 {
	if l.lightType == LightTypeDirectional {
		return l.direction.Mul(-1)
	}
	to := l.position.Sub(world)
	if to.Dot(to) < 1e-12 {
		return mgl32.Vec3{0, 1, 0}
	}
	return to.Normalize()
}

func (l *lightImpl) SpaceTransform(boundsMin, boundsMax mgl32.Vec3) mgl32.Mat4 {
	center := boundsMin.Add(boundsMax).Mul(0.5)
	radius := boundsMax.Sub(boundsMin).Len() * 0.5
	if radius <= 0 {
		radius = 1
	}

	if l.lightType == LightTypeDirectional {
		eye := center.Sub(l.direction.Mul(2 * radius))
		view := mgl32.LookAtV(eye, center, upFor(l.direction))
		proj := common.OrthoWGPU(-radius, radius, -radius, radius, radius, 3*radius)
		return proj.Mul4(view)
	}

	toCenter := center.Sub(l.position)
	dist := toCenter.Len()
	if dist <= radius {
		// Light inside the bounds: fall back to a wide frustum from just
		// outside the sphere.
		dist = radius * 1.5
		toCenter = mgl32.Vec3{0, -1, 0}.Mul(dist)
	}
	fov := 2 * math32.Atan(radius/dist)
	near := dist - radius
	if near < 1e-3 {
		near = 1e-3
	}
	view := mgl32.LookAtV(l.position, l.position.Add(toCenter), upFor(toCenter.Normalize()))
	proj := common.PerspectiveWGPU(fov, 1, near, dist+radius)
	return proj.Mul4(view)
}

// upFor picks an up vector that is not parallel to the look direction.
func upFor(dir mgl32.Vec3) mgl32.Vec3 {
	if math32.Abs(dir.Y()) > 0.99 {
		return mgl32.Vec3{0, 0, 1}
	}
	return mgl32.Vec3{0, 1, 0}
}

func (l *lightImpl) SetPosition(position mgl32.Vec3) {
	l.position = position
}

func (l *lightImpl) SetDirection(direction mgl32.Vec3) {
	if direction.Dot(direction) < 1e-12 {
		return
	}
	l.direction = direction.Normalize()
}

func (l *lightImpl) SetColor(color mgl32.Vec3) {
	l.color = color
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
