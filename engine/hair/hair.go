package hair

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Strand is a single hair fiber modeled as an ordered polyline of control
// points. Thickness and Tangents are optional: a nil Thickness falls back to
// the style's default thickness, and nil Tangents are derived during geometry
// build by central differencing.
type Strand struct {
	// Points are the world-space control point positions, root first.
	Points []mgl32.Vec3

	// Thickness holds the per-point fiber radius. When nil the style default
	// applies to every point. When non-nil it must have one entry per point.
	Thickness []float32

	// Tangents holds unit tangents per control point. When nil they are
	// derived from neighboring points at geometry build time.
	Tangents []mgl32.Vec3
}

// hairStyle is the implementation of the HairStyle interface.
type hairStyle struct {
	name             string
	strands          []Strand
	defaultThickness float32
}

// HairStyle defines the interface for a loaded hair style: the canonical,
// immutable owner of strand control point data. Both rendering backends
// consume the same packed buffers produced by BuildGeometry; neither backend
// ever copies or re-derives the underlying numeric data.
type HairStyle interface {
	// Name retrieves the style identifier.
	//
	// Returns:
	//   - string: the style name
	Name() string

	// StrandCount returns the number of strands in the style.
	//
	// Returns:
	//   - int: the strand count
	StrandCount() int

	// PointCount returns the total number of control points across all strands.
	//
	// Returns:
	//   - int: the control point count
	PointCount() int

	// SegmentCount returns the total number of renderable segments across all
	// strands. A strand of n points contributes n-1 segments.
	//
	// Returns:
	//   - int: the segment count
	SegmentCount() int

	// Strands returns the raw strand slice. Callers must treat the returned
	// data as read-only; strands are immutable once the style is built.
	//
	// Returns:
	//   - []Strand: the strands
	Strands() []Strand

	// DefaultThickness returns the fiber radius applied to points of strands
	// that carry no per-point thickness.
	//
	// Returns:
	//   - float32: the default radius in world units
	DefaultThickness() float32

	// Reduce returns a new HairStyle keeping roughly keepRatio of the strands,
	// uniformly distributed, for interactive level-of-detail preview. Whole
	// strands are preserved; a ratio >= 1 returns the receiver unchanged.
	//
	// Parameters:
	//   - keepRatio: fraction of strands to keep, in (0, 1]
	//
	// Returns:
	//   - HairStyle: the reduced style
	Reduce(keepRatio float64) HairStyle

	// BuildGeometry packs the strand data into the shared geometry buffers
	// consumed by both backends. This is a one-time, non-incremental build;
	// malformed strand data surfaces as a *GeometryError and no geometry is
	// produced.
	//
	// Returns:
	//   - *Geometry: the packed shared buffers
	//   - error: a *GeometryError if any strand is malformed
	BuildGeometry() (*Geometry, error)
}

var _ HairStyle = &hairStyle{}

// NewHairStyle creates a new HairStyle with the provided options applied.
//
// Parameters:
//   - name: the style identifier
//   - options: a variadic list of HairStyleBuilderOption functions to configure the style
//
// Returns:
//   - HairStyle: a new HairStyle instance
func NewHairStyle(name string, options ...HairStyleBuilderOption) HairStyle {
	h := &hairStyle{
		name:             name,
		defaultThickness: DefaultStrandThickness,
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

func (h *hairStyle) Name() string {
	return h.name
}

func (h *hairStyle) StrandCount() int {
	return len(h.strands)
}

func (h *hairStyle) PointCount() int {
	total := 0
	for _, s := range h.strands {
		total += len(s.Points)
	}
	return total
}

func (h *hairStyle) SegmentCount() int {
	total := 0
	for _, s := range h.strands {
		if len(s.Points) > 1 {
			total += len(s.Points) - 1
		}
	}
	return total
}

func (h *hairStyle) Strands() []Strand {
	return h.strands
}

func (h *hairStyle) DefaultThickness() float32 {
	return h.defaultThickness
}

func (h *hairStyle) Reduce(keepRatio float64) HairStyle {
	if keepRatio >= 1 || len(h.strands) == 0 {
		return h
	}
	if keepRatio <= 0 {
		keepRatio = 1.0 / float64(len(h.strands))
	}

	stride := 1.0 / keepRatio
	kept := make([]Strand, 0, int(float64(len(h.strands))*keepRatio)+1)
	next := 0.0
	for i := range h.strands {
		if float64(i) >= next {
			kept = append(kept, h.strands[i])
			next += stride
		}
	}

	return &hairStyle{
		name:             h.name,
		strands:          kept,
		defaultThickness: h.defaultThickness,
	}
}
