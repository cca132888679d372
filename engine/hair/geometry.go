package hair

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// GeometryError reports malformed strand data detected at geometry build
// time. The build is all-or-nothing: a single malformed strand aborts the
// whole strand set and no partial geometry is produced.
type GeometryError struct {
	// Strand is the index of the offending strand within the style.
	Strand int
	// Reason describes what made the strand malformed.
	Reason string
}

// Error implements the error interface.
//
// Returns:
//   - string: a formatted error message
func (e *GeometryError) Error() string {
	return fmt.Sprintf("hair geometry: strand %d: %s", e.Strand, e.Reason)
}

// Geometry holds the packed buffers shared by both rendering backends. The
// rasterizer binds PositionThickness and Tangents as vertex inputs and draws
// SegmentIndices as a line list; the ray tracer registers the same three
// buffers as curve-primitive vertex data, a tangent attribute buffer, and a
// two-indices-per-primitive index buffer. Neither backend copies or mutates
// the data after Build.
type Geometry struct {
	// PositionThickness packs each control point as (x, y, z, radius).
	PositionThickness []mgl32.Vec4

	// Tangents holds the unit tangent of each control point, parallel to
	// PositionThickness.
	Tangents []mgl32.Vec3

	// SegmentIndices maps each renderable primitive to its two control point
	// indices; length is 2 * SegmentCount().
	SegmentIndices []uint32

	// segmentStrand back-references each segment to its owning strand index.
	segmentStrand []uint32

	// boundsMin and boundsMax are the world-space AABB of all control points,
	// padded by the largest fiber radius.
	boundsMin mgl32.Vec3
	boundsMax mgl32.Vec3
}

// buildGeometry packs the style's strands into shared buffers, deriving
// tangents by central difference where the asset carries none.
func buildGeometry(h *hairStyle) (*Geometry, error) {
	totalPoints := h.PointCount()
	totalSegments := h.SegmentCount()

	g := &Geometry{
		PositionThickness: make([]mgl32.Vec4, 0, totalPoints),
		Tangents:          make([]mgl32.Vec3, 0, totalPoints),
		SegmentIndices:    make([]uint32, 0, 2*totalSegments),
		segmentStrand:     make([]uint32, 0, totalSegments),
		boundsMin:         mgl32.Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		boundsMax:         mgl32.Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
	}

	maxRadius := float32(0)
	base := uint32(0)
	for si, s := range h.strands {
		if len(s.Points) < 2 {
			return nil, &GeometryError{Strand: si, Reason: fmt.Sprintf("has %d control points, need at least 2", len(s.Points))}
		}
		if s.Thickness != nil && len(s.Thickness) != len(s.Points) {
			return nil, &GeometryError{Strand: si, Reason: fmt.Sprintf("thickness count %d does not match point count %d", len(s.Thickness), len(s.Points))}
		}
		if s.Tangents != nil && len(s.Tangents) != len(s.Points) {
			return nil, &GeometryError{Strand: si, Reason: fmt.Sprintf("tangent count %d does not match point count %d", len(s.Tangents), len(s.Points))}
		}

		for pi, p := range s.Points {
			if !finiteVec3(p) {
				return nil, &GeometryError{Strand: si, Reason: fmt.Sprintf("point %d has a non-finite position", pi)}
			}

			radius := h.defaultThickness
			if s.Thickness != nil {
				radius = s.Thickness[pi]
			}
			if math32.IsNaN(radius) || math32.IsInf(radius, 0) || radius < 0 {
				return nil, &GeometryError{Strand: si, Reason: fmt.Sprintf("point %d has an invalid thickness %v", pi, radius)}
			}
			if radius > maxRadius {
				maxRadius = radius
			}

			var tangent mgl32.Vec3
			if s.Tangents != nil {
				tangent = s.Tangents[pi]
				if !finiteVec3(tangent) {
					return nil, &GeometryError{Strand: si, Reason: fmt.Sprintf("point %d has a non-finite tangent", pi)}
				}
				tangent = safeNormalize(tangent)
			} else {
				tangent = derivedTangent(s.Points, pi)
			}

			g.PositionThickness = append(g.PositionThickness, mgl32.Vec4{p.X(), p.Y(), p.Z(), radius})
			g.Tangents = append(g.Tangents, tangent)

			for axis := 0; axis < 3; axis++ {
				if p[axis] < g.boundsMin[axis] {
					g.boundsMin[axis] = p[axis]
				}
				if p[axis] > g.boundsMax[axis] {
					g.boundsMax[axis] = p[axis]
				}
			}
		}

		for seg := 0; seg < len(s.Points)-1; seg++ {
			g.SegmentIndices = append(g.SegmentIndices, base+uint32(seg), base+uint32(seg)+1)
			g.segmentStrand = append(g.segmentStrand, uint32(si))
		}
		base += uint32(len(s.Points))
	}

	pad := mgl32.Vec3{maxRadius, maxRadius, maxRadius}
	g.boundsMin = g.boundsMin.Sub(pad)
	g.boundsMax = g.boundsMax.Add(pad)
	return g, nil
}

func (h *hairStyle) BuildGeometry() (*Geometry, error) {
	return buildGeometry(h)
}

// derivedTangent computes the tangent at point index pi of a polyline by
// central difference, falling back to forward/backward difference at the
// endpoints. Zero-length differences yield an arbitrary fixed axis rather
// than a NaN vector.
func derivedTangent(points []mgl32.Vec3, pi int) mgl32.Vec3 {
	prev := pi - 1
	next := pi + 1
	if prev < 0 {
		prev = 0
	}
	if next >= len(points) {
		next = len(points) - 1
	}
	return safeNormalize(points[next].Sub(points[prev]))
}

// safeNormalize normalizes v, substituting the +Y axis when v is too short
// to normalize without amplifying noise.
func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	const minLen = 1e-12
	len2 := v.Dot(v)
	if len2 < minLen {
		return mgl32.Vec3{0, 1, 0}
	}
	return v.Mul(1 / math32.Sqrt(len2))
}

func finiteVec3(v mgl32.Vec3) bool {
	for axis := 0; axis < 3; axis++ {
		if math32.IsNaN(v[axis]) || math32.IsInf(v[axis], 0) {
			return false
		}
	}
	return true
}

// SegmentCount returns the number of renderable primitives in the geometry.
//
// Returns:
//   - int: the segment count
func (g *Geometry) SegmentCount() int {
	return len(g.SegmentIndices) / 2
}

// Bounds returns the world-space axis-aligned bounding box of the geometry,
// padded by the largest fiber radius.
//
// Returns:
//   - mgl32.Vec3: the minimum corner
//   - mgl32.Vec3: the maximum corner
func (g *Geometry) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	return g.boundsMin, g.boundsMax
}

// SegmentStrand returns the strand index owning the given segment. This is a
// back-reference for lookups only; it never participates in rendering.
//
// Parameters:
//   - segment: the primitive index, in [0, SegmentCount())
//
// Returns:
//   - uint32: the owning strand index
func (g *Geometry) SegmentStrand(segment int) uint32 {
	return g.segmentStrand[segment]
}

// SegmentPosition interpolates the world position and radius along a segment
// at parametric coordinate u in [0, 1].
//
// Parameters:
//   - segment: the primitive index
//   - u: the parametric coordinate along the segment
//
// Returns:
//   - mgl32.Vec3: the interpolated position
//   - float32: the interpolated radius
func (g *Geometry) SegmentPosition(segment int, u float32) (mgl32.Vec3, float32) {
	a := g.PositionThickness[g.SegmentIndices[2*segment]]
	b := g.PositionThickness[g.SegmentIndices[2*segment+1]]
	mixed := a.Mul(1 - u).Add(b.Mul(u))
	return mgl32.Vec3{mixed.X(), mixed.Y(), mixed.Z()}, mixed.W()
}

// SegmentTangent interpolates the unit tangent along a segment at parametric
// coordinate u in [0, 1]. This is the attribute lookup the ray-tracing
// backend performs at each hit's (primitive id, u).
//
// Parameters:
//   - segment: the primitive index
//   - u: the parametric coordinate along the segment
//
// Returns:
//   - mgl32.Vec3: the interpolated unit tangent
func (g *Geometry) SegmentTangent(segment int, u float32) mgl32.Vec3 {
	a := g.Tangents[g.SegmentIndices[2*segment]]
	b := g.Tangents[g.SegmentIndices[2*segment+1]]
	return safeNormalize(a.Mul(1 - u).Add(b.Mul(u)))
}
