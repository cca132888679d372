package light

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/strandworks/strand-go/common"
	"github.com/strandworks/strand-go/engine/hair"
)

// deepShadowMap is the implementation of the DeepShadowMap interface.
type deepShadowMap struct {
	width         int
	height        int
	layers        int
	strandOpacity float32

	// data holds accumulated density per (layer, y, x), layer-major. After
	// Build it is a running sum along layers: layer k stores the total
	// density from the light up to depth (k+1)/layers.
	data []float32

	viewProjection mgl32.Mat4
}

// DeepShadowMap defines the interface for the light-space layered density
// buffer used by the self-shadowing module. Built exactly once per frame (or
// on explicit invalidation) from the strand geometry, then read-only for the
// shading phase; both backends sample the same buffer.
type DeepShadowMap interface {
	// Width returns the texel width of each layer.
	//
	// Returns:
	//   - int: the width in texels
	Width() int

	// Height returns the texel height of each layer.
	//
	// Returns:
	//   - int: the height in texels
	Height() int

	// Layers returns the number of depth layers.
	//
	// Returns:
	//   - int: the layer count
	Layers() int

	// Clear zeroes the density buffer.
	Clear()

	// Build splats the geometry's segments into the layered density buffer
	// in the given light space, then accumulates layers front to back so
	// each texel layer stores the total density between the light and that
	// depth. Implicitly clears first; partial updates are never visible.
	//
	// Parameters:
	//   - g: the packed strand geometry to splat
	//   - viewProjection: the light-space view-projection matrix
	Build(g *hair.Geometry, viewProjection mgl32.Mat4)

	// ViewProjection returns the light-space matrix of the last Build.
	//
	// Returns:
	//   - mgl32.Mat4: the view-projection matrix
	ViewProjection() mgl32.Mat4

	// Project maps a world position into shadow map coordinates: continuous
	// texel coordinates plus normalized light-space depth. ok is false when
	// the position projects outside the map, which callers treat as fully
	// lit rather than an error.
	//
	// Parameters:
	//   - world: the world-space position
	//
	// Returns:
	//   - float32: the continuous texel x coordinate
	//   - float32: the continuous texel y coordinate
	//   - float32: the normalized depth in [0, 1]
	//   - bool: false if the position is outside the map
	Project(world mgl32.Vec3) (float32, float32, float32, bool)

	// DensityAt returns the accumulated strand density between the light
	// and the given depth at a texel. Out-of-range texels return 0 (fully
	// lit): an out-of-range sample is an expected boundary condition.
	//
	// Parameters:
	//   - texelX: the texel x coordinate
	//   - texelY: the texel y coordinate
	//   - depth: the normalized light-space depth in [0, 1]
	//
	// Returns:
	//   - float32: the accumulated density, >= 0
	DensityAt(texelX, texelY int, depth float32) float32

	// Staging returns the layered density buffer packaged for GPU upload as
	// an R32Float 2D array texture, one array layer per depth layer. The
	// returned texel slice aliases the map's memory.
	//
	// Returns:
	//   - common.TextureStagingData: the staging descriptor
	Staging() common.TextureStagingData
}

var _ DeepShadowMap = &deepShadowMap{}

// NewDeepShadowMap creates a new DeepShadowMap with the provided options
// applied.
//
// Parameters:
//   - options: a variadic list of DeepShadowMapBuilderOption functions to configure the map
//
// Returns:
//   - DeepShadowMap: a new DeepShadowMap instance
func NewDeepShadowMap(options ...DeepShadowMapBuilderOption) DeepShadowMap {
	m := &deepShadowMap{
		width:         DefaultShadowMapResolution,
		height:        DefaultShadowMapResolution,
		layers:        DefaultShadowMapLayers,
		strandOpacity: DefaultStrandOpacity,
	}
	for _, opt := range options {
		opt(m)
	}
	m.data = make([]float32, m.width*m.height*m.layers)
	return m
}

func (m *deepShadowMap) Width() int {
	return m.width
}

func (m *deepShadowMap) Height() int {
	return m.height
}

func (m *deepShadowMap) Layers() int {
	return m.layers
}

func (m *deepShadowMap) Clear() {
	clear(m.data)
}

func (m *deepShadowMap) Build(g *hair.Geometry, viewProjection mgl32.Mat4) {
	m.Clear()
	m.viewProjection = viewProjection

	// Step along each segment at roughly one sample per texel of projected
	// footprint, estimated from the scene diagonal.
	min, max := g.Bounds()
	diag := max.Sub(min).Len()
	worldPerTexel := diag / float32(m.width)
	if worldPerTexel <= 0 {
		worldPerTexel = 1e-3
	}

	for seg := 0; seg < g.SegmentCount(); seg++ {
		p0, _ := g.SegmentPosition(seg, 0)
		p1, _ := g.SegmentPosition(seg, 1)
		steps := int(math32.Ceil(p1.Sub(p0).Len()/worldPerTexel)) + 1
		for i := 0; i < steps; i++ {
			u := float32(0)
			if steps > 1 {
				u = float32(i) / float32(steps-1)
			}
			m.splat(p0.Mul(1 - u).Add(p1.Mul(u)))
		}
	}

	// Front-to-back accumulation: each layer ends up holding the density
	// between the light and its own depth slice.
	layerSize := m.width * m.height
	for layer := 1; layer < m.layers; layer++ {
		prev := m.data[(layer-1)*layerSize : layer*layerSize]
		cur := m.data[layer*layerSize : (layer+1)*layerSize]
		for i := range cur {
			cur[i] += prev[i]
		}
	}
}

func (m *deepShadowMap) splat(world mgl32.Vec3) {
	x, y, depth, ok := m.Project(world)
	if !ok {
		return
	}
	layer := int(depth * float32(m.layers))
	if layer >= m.layers {
		layer = m.layers - 1
	}
	idx := (layer*m.height+int(y))*m.width + int(x)
	m.data[idx] += m.strandOpacity
}

func (m *deepShadowMap) ViewProjection() mgl32.Mat4 {
	return m.viewProjection
}

func (m *deepShadowMap) Project(world mgl32.Vec3) (float32, float32, float32, bool) {
	clip := m.viewProjection.Mul4x1(mgl32.Vec4{world.X(), world.Y(), world.Z(), 1})
	if clip.W() <= 0 {
		return 0, 0, 0, false
	}
	inv := 1 / clip.W()
	ndcX := clip.X() * inv
	ndcY := clip.Y() * inv
	depth := clip.Z() * inv
	if ndcX < -1 || ndcX >= 1 || ndcY < -1 || ndcY >= 1 || depth < 0 || depth > 1 {
		return 0, 0, 0, false
	}
	x := (ndcX*0.5 + 0.5) * float32(m.width)
	y := (ndcY*0.5 + 0.5) * float32(m.height)
	return x, y, depth, true
}

func (m *deepShadowMap) DensityAt(texelX, texelY int, depth float32) float32 {
	if texelX < 0 || texelX >= m.width || texelY < 0 || texelY >= m.height {
		return 0
	}
	layer := int(common.Clamp(depth, 0, 1) * float32(m.layers))
	if layer >= m.layers {
		layer = m.layers - 1
	}
	return m.data[(layer*m.height+texelY)*m.width+texelX]
}

func (m *deepShadowMap) Staging() common.TextureStagingData {
	return common.TextureStagingData{
		Texels:        common.SliceToBytes(m.data),
		Width:         uint32(m.width),
		Height:        uint32(m.height),
		Depth:         uint32(m.layers),
		Format:        common.DeepShadowMapFormat,
		BytesPerTexel: 4,
	}
}
