package shading

import "github.com/go-gl/mathgl/mgl32"

// Material holds the strand reflectance parameters fed to KajiyaKay.
type Material struct {
	// Diffuse is the diffuse reflectance (r, g, b).
	Diffuse mgl32.Vec3
	// Specular is the specular reflectance (r, g, b).
	Specular mgl32.Vec3
	// Exponent is the specular sharpness, >= 0.
	Exponent float32
}

// DefaultHairMaterial returns reflectance values tuned for dark blond hair.
//
// Returns:
//   - Material: the default material
func DefaultHairMaterial() Material {
	return Material{
		Diffuse:  mgl32.Vec3{0.32, 0.228, 0.128},
		Specular: mgl32.Vec3{1, 1, 1},
		Exponent: 50,
	}
}
