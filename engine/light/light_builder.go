package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption defines a function that modifies the lightImpl during
// construction.
type LightBuilderOption func(*lightImpl)

// WithPosition sets the world-space position of the light.
//
// Parameters:
//   - position: the position
//
// Returns:
//   - LightBuilderOption: a function that applies the position to the light
func WithPosition(position mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = position
	}
}

// WithDirection sets the direction of the light. The direction is normalized;
// a zero vector is ignored.
//
// Parameters:
//   - direction: the direction from the light toward the scene
//
// Returns:
//   - LightBuilderOption: a function that applies the direction to the light
func WithDirection(direction mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		if direction.Dot(direction) >= 1e-12 {
			l.direction = direction.Normalize()
		}
	}
}

// WithColor sets the RGB color of the light.
//
// Parameters:
//   - color: color as (r, g, b)
//
// Returns:
//   - LightBuilderOption: a function that applies the color to the light
func WithColor(color mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = color
	}
}

// WithIntensity sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity to the light
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithEnabled sets whether the light starts enabled.
//
// Parameters:
//   - enabled: true to enable
//
// Returns:
//   - LightBuilderOption: a function that applies the flag to the light
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}
