package hair

import (
	"github.com/strandworks/strand-go/common"
)

// GPU buffer views over the packed geometry. Both backends bind these exact
// bytes: the rasterizer as vertex/index buffers, the ray tracer as the
// curve-primitive registration buffers. The views alias the geometry's
// memory; callers upload, never mutate.

// PositionThicknessBytes returns the packed (x, y, z, radius) vertex buffer
// as raw bytes, 16 bytes per control point.
//
// Returns:
//   - []byte: byte view of the position+thickness buffer
func (g *Geometry) PositionThicknessBytes() []byte {
	return common.SliceToBytes(g.PositionThickness)
}

// TangentBytes returns the tangent attribute buffer as raw bytes, 12 bytes
// per control point.
//
// Returns:
//   - []byte: byte view of the tangent buffer
func (g *Geometry) TangentBytes() []byte {
	return common.SliceToBytes(g.Tangents)
}

// SegmentIndexBytes returns the segment index buffer as raw bytes, two
// uint32 indices per renderable primitive.
//
// Returns:
//   - []byte: byte view of the index buffer
func (g *Geometry) SegmentIndexBytes() []byte {
	return common.SliceToBytes(g.SegmentIndices)
}
