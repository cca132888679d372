package hair

// DefaultStrandThickness is the fiber radius applied when neither the style
// asset nor the builder provides one, in world units.
const DefaultStrandThickness float32 = 0.001

// HairStyleBuilderOption defines a function that modifies the hairStyle
// during construction.
type HairStyleBuilderOption func(*hairStyle)

// WithStrands sets the strand data of the style.
//
// Parameters:
//   - strands: the strands to store; the style takes ownership of the slice
//
// Returns:
//   - HairStyleBuilderOption: a function that applies the strands to the style
func WithStrands(strands []Strand) HairStyleBuilderOption {
	return func(h *hairStyle) {
		h.strands = strands
	}
}

// WithDefaultThickness sets the fiber radius used for strands that carry no
// per-point thickness. Non-positive values are ignored and the package
// default is kept.
//
// Parameters:
//   - thickness: the default radius in world units (must be > 0)
//
// Returns:
//   - HairStyleBuilderOption: a function that applies the thickness to the style
func WithDefaultThickness(thickness float32) HairStyleBuilderOption {
	return func(h *hairStyle) {
		if thickness > 0 {
			h.defaultThickness = thickness
		}
	}
}
