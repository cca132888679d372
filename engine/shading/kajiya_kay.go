// package shading implements the hair appearance model shared by both
// rendering backends: the Kajiya-Kay anisotropic strand shading formula, the
// deep-shadow and volumetric ambient occlusion sampling, and the per-frame
// evaluator that composes them under the active shading mode. The Go code
// here is the single source of truth; the rasterizer's WGSL fragment stage
// mirrors it operation for operation.
package shading

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/strandworks/strand-go/common"
)

// KajiyaKay evaluates the anisotropic strand shading formula. The diffuse
// term scales with the sine between light and tangent; the specular term
// raises the tangent-relative alignment of light and eye to the exponent.
// Arguments to the square roots are clamped at zero before the root so
// floating-point drift in the unit-vector dot products can never produce a
// NaN.
//
// Parameters:
//   - diffuse: the diffuse reflectance (r, g, b)
//   - specular: the specular reflectance (r, g, b)
//   - p: the specular exponent, >= 0
//   - tangent: the unit strand tangent T
//   - lightDir: the unit vector L from the shading point toward the light
//   - eyeDir: the unit vector E from the shading point toward the eye
//
// Returns:
//   - mgl32.Vec3: the radiance contribution, non-negative and finite
func KajiyaKay(diffuse, specular mgl32.Vec3, p float32, tangent, lightDir, eyeDir mgl32.Vec3) mgl32.Vec3 {
	cosTL := lightDir.Dot(tangent)
	cosTE := eyeDir.Dot(tangent)

	sinTL := math32.Sqrt(math32.Max(0, 1-cosTL*cosTL))
	sinTE := math32.Sqrt(math32.Max(0, 1-cosTE*cosTE))

	// The pow base is clamped at zero: a negative base under a fractional
	// exponent is undefined, and the result would clamp to zero anyway.
	base := math32.Max(0, cosTL*cosTE+sinTL*sinTE)
	specularTerm := common.Clamp(math32.Pow(base, p), 0, 1)

	return diffuse.Mul(sinTL).Add(specular.Mul(specularTerm))
}
