package shading

import "fmt"

// Mode selects which occlusion modules execute during shading. The set is
// closed; the frame evaluator resolves the mode into a pair of booleans once
// per frame so the inner shading loop never re-checks the enum.
type Mode int

const (
	// ModeCombined multiplies self-shadow occlusion and ambient occlusion.
	ModeCombined Mode = iota

	// ModeSelfShadowOnly samples only the deep shadow map; ambient occlusion
	// is implicitly 1.
	ModeSelfShadowOnly

	// ModeAmbientOcclusionOnly samples only the density volume; self-shadow
	// occlusion is implicitly 1.
	ModeAmbientOcclusionOnly
)

// Valid reports whether the mode is one of the defined variants.
//
// Returns:
//   - bool: true if the mode is defined
func (m Mode) Valid() bool {
	return m >= ModeCombined && m <= ModeAmbientOcclusionOnly
}

// String returns a human-readable name for the mode.
//
// Returns:
//   - string: the mode name
func (m Mode) String() string {
	switch m {
	case ModeCombined:
		return "combined"
	case ModeSelfShadowOnly:
		return "self-shadow-only"
	case ModeAmbientOcclusionOnly:
		return "ambient-occlusion-only"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// resolve maps the mode to the pair of per-frame occlusion toggles.
func (m Mode) resolve() (sampleShadows, sampleAO bool) {
	switch m {
	case ModeSelfShadowOnly:
		return true, false
	case ModeAmbientOcclusionOnly:
		return false, true
	default:
		return true, true
	}
}
