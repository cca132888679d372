package hair

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// ScalpGrowth configures procedural strand growth from a scalp mesh. Strands
// are seeded at each mesh vertex and grown outward along the vertex normal,
// bending under a constant gravity pull.
type ScalpGrowth struct {
	// StrandLength is the total length of each grown strand in world units.
	StrandLength float32
	// PointsPerStrand is the number of control points per strand; at least 2.
	PointsPerStrand int
	// Gravity pulls each successive point downward (negative Y) by this
	// fraction of the step length, producing a natural droop.
	Gravity float32
	// Thickness is the fiber radius applied to the grown style.
	Thickness float32
}

// DefaultScalpGrowth returns growth parameters suitable for a head-scale
// scalp mesh measured in meters.
//
// Returns:
//   - ScalpGrowth: the default parameters
func DefaultScalpGrowth() ScalpGrowth {
	return ScalpGrowth{
		StrandLength:    0.25,
		PointsPerStrand: 16,
		Gravity:         0.35,
		Thickness:       DefaultStrandThickness,
	}
}

// GrowFromScalp loads a glTF binary (.glb) scalp mesh and grows one strand
// per vertex along the vertex normal. Meshes without normals are rejected;
// the root at each vertex stays glued to the scalp surface.
//
// Parameters:
//   - path: filesystem path to the .glb scalp asset
//   - params: the growth configuration
//
// Returns:
//   - HairStyle: the grown style
//   - error: a wrapped error on load or decode failure
func GrowFromScalp(path string, params ScalpGrowth) (HairStyle, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scalp mesh %q: %w", path, err)
	}

	if params.PointsPerStrand < 2 {
		params.PointsPerStrand = 2
	}
	if params.StrandLength <= 0 {
		params.StrandLength = DefaultScalpGrowth().StrandLength
	}

	var strands []Strand
	for _, mesh := range doc.Meshes {
		for _, prim := range mesh.Primitives {
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			normIdx, ok := prim.Attributes[gltf.NORMAL]
			if !ok {
				return nil, fmt.Errorf("scalp mesh %q: primitive carries no normals", path)
			}

			positions, err := readScalpVec3Accessor(doc, posIdx)
			if err != nil {
				return nil, fmt.Errorf("scalp mesh %q: read positions: %w", path, err)
			}
			normals, err := readScalpVec3Accessor(doc, normIdx)
			if err != nil {
				return nil, fmt.Errorf("scalp mesh %q: read normals: %w", path, err)
			}
			if len(normals) != len(positions) {
				return nil, fmt.Errorf("scalp mesh %q: %d normals for %d positions", path, len(normals), len(positions))
			}

			for i := range positions {
				strands = append(strands, growStrand(positions[i], normals[i], params))
			}
		}
	}

	if len(strands) == 0 {
		return nil, fmt.Errorf("scalp mesh %q: no growable vertices found", path)
	}

	return NewHairStyle(fmt.Sprintf("scalp(%s)", path),
		WithStrands(strands),
		WithDefaultThickness(params.Thickness),
	), nil
}

// growStrand builds one strand rooted at a scalp vertex, stepping along the
// normal and blending in a downward gravity pull at each step.
func growStrand(root, normal mgl32.Vec3, params ScalpGrowth) Strand {
	step := params.StrandLength / float32(params.PointsPerStrand-1)
	direction := safeNormalize(normal)
	down := mgl32.Vec3{0, -1, 0}

	points := make([]mgl32.Vec3, params.PointsPerStrand)
	points[0] = root
	for i := 1; i < params.PointsPerStrand; i++ {
		direction = safeNormalize(direction.Add(down.Mul(params.Gravity)))
		points[i] = points[i-1].Add(direction.Mul(step))
	}
	return Strand{Points: points}
}

// readScalpVec3Accessor decodes a tightly- or interleaved-packed VEC3 float
// accessor from the document's embedded buffers.
func readScalpVec3Accessor(doc *gltf.Document, accessorIdx int) ([]mgl32.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("accessor %d is not VEC3", accessorIdx)
	}
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor %d has no buffer view", accessorIdx)
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, fmt.Errorf("buffer %d carries no embedded data", bufferView.Buffer)
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = 12
	}

	result := make([]mgl32.Vec3, accessor.Count)
	for i := range result {
		offset := start + i*stride
		if offset+12 > len(buffer.Data) {
			return nil, fmt.Errorf("accessor %d overruns buffer %d", accessorIdx, bufferView.Buffer)
		}
		for j := 0; j < 3; j++ {
			result[i][j] = math32.Float32frombits(
				uint32(buffer.Data[offset+j*4]) |
					uint32(buffer.Data[offset+j*4+1])<<8 |
					uint32(buffer.Data[offset+j*4+2])<<16 |
					uint32(buffer.Data[offset+j*4+3])<<24)
		}
	}
	return result, nil
}
