// package volume implements the strand density volume: a 3D grid of strand
// occupancy over a fixed world-space bounding box, rebuilt once per frame (or
// on explicit invalidation) and read-only during shading. The ambient
// occlusion module samples it on the CPU path; the rasterizer binds the same
// voxel bytes as a 3D texture.
package volume

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/strandworks/strand-go/common"
	"github.com/strandworks/strand-go/engine/hair"
)

// densityVolume is the implementation of the DensityVolume interface.
type densityVolume struct {
	origin     mgl32.Vec3
	size       mgl32.Vec3
	resolution int
	voxels     []uint8
}

// DensityVolume defines the interface for the voxelized strand density field.
// Writes happen only through Voxelize/Clear in the per-frame build step; all
// sampling is read-only and safe for concurrent use once the build completes.
type DensityVolume interface {
	// Origin returns the world-space minimum corner of the volume.
	//
	// Returns:
	//   - mgl32.Vec3: the origin
	Origin() mgl32.Vec3

	// Size returns the world-space extent of the volume along each axis.
	//
	// Returns:
	//   - mgl32.Vec3: the size
	Size() mgl32.Vec3

	// Resolution returns the voxel count per axis (the grid is cubic).
	//
	// Returns:
	//   - int: voxels per axis
	Resolution() int

	// Clear zeroes every voxel.
	Clear()

	// Voxelize splats the geometry's segments into the grid, accumulating
	// occupancy with saturation. Callers Clear first for a from-scratch
	// rebuild; accumulating over a previous frame is never implicit.
	//
	// Parameters:
	//   - g: the packed strand geometry to splat
	Voxelize(g *hair.Geometry)

	// Sample returns the normalized density in [0, 1] at a world position.
	// Positions outside the volume return 0: an out-of-range sample is an
	// expected boundary condition, never an error.
	//
	// Parameters:
	//   - world: the world-space sample position
	//
	// Returns:
	//   - float32: the normalized density, 0 when outside the volume
	Sample(world mgl32.Vec3) float32

	// Staging returns the voxel bytes packaged for GPU upload as an R8Unorm
	// 3D texture. The returned texel slice aliases the volume's memory.
	//
	// Returns:
	//   - common.TextureStagingData: the staging descriptor
	Staging() common.TextureStagingData
}

var _ DensityVolume = &densityVolume{}

// NewDensityVolume creates a new DensityVolume covering the given bounding
// box with the provided options applied.
//
// Parameters:
//   - origin: world-space minimum corner of the volume
//   - size: world-space extent along each axis (each component must be > 0)
//   - options: a variadic list of DensityVolumeBuilderOption functions to configure the volume
//
// Returns:
//   - DensityVolume: a new DensityVolume instance
func NewDensityVolume(origin, size mgl32.Vec3, options ...DensityVolumeBuilderOption) DensityVolume {
	v := &densityVolume{
		origin:     origin,
		size:       size,
		resolution: DefaultResolution,
	}
	for _, opt := range options {
		opt(v)
	}
	v.voxels = make([]uint8, v.resolution*v.resolution*v.resolution)
	return v
}

// NewDensityVolumeForGeometry creates a DensityVolume sized to the
// geometry's padded bounding box.
//
// Parameters:
//   - g: the geometry whose bounds define the volume
//   - options: a variadic list of DensityVolumeBuilderOption functions to configure the volume
//
// Returns:
//   - DensityVolume: a new DensityVolume instance
func NewDensityVolumeForGeometry(g *hair.Geometry, options ...DensityVolumeBuilderOption) DensityVolume {
	min, max := g.Bounds()
	return NewDensityVolume(min, max.Sub(min), options...)
}

func (v *densityVolume) Origin() mgl32.Vec3 {
	return v.origin
}

func (v *densityVolume) Size() mgl32.Vec3 {
	return v.size
}

func (v *densityVolume) Resolution() int {
	return v.resolution
}

func (v *densityVolume) Clear() {
	clear(v.voxels)
}

// splatWeight is the occupancy increment per segment sample. Saturation at
// 255 caps density in crowded voxels instead of wrapping.
const splatWeight = 32

func (v *densityVolume) Voxelize(g *hair.Geometry) {
	voxelSize := v.minVoxelExtent()
	for seg := 0; seg < g.SegmentCount(); seg++ {
		p0, _ := g.SegmentPosition(seg, 0)
		p1, _ := g.SegmentPosition(seg, 1)

		// Step at half-voxel granularity so thin diagonal segments cannot
		// skip voxels.
		length := p1.Sub(p0).Len()
		steps := int(math32.Ceil(length/(voxelSize*0.5))) + 1
		for i := 0; i < steps; i++ {
			u := float32(i) / float32(steps-1)
			if steps == 1 {
				u = 0
			}
			v.splat(p0.Mul(1 - u).Add(p1.Mul(u)))
		}
	}
}

func (v *densityVolume) splat(world mgl32.Vec3) {
	idx, ok := v.voxelIndex(world)
	if !ok {
		return
	}
	if int(v.voxels[idx])+splatWeight > 255 {
		v.voxels[idx] = 255
	} else {
		v.voxels[idx] += splatWeight
	}
}

func (v *densityVolume) Sample(world mgl32.Vec3) float32 {
	idx, ok := v.voxelIndex(world)
	if !ok {
		return 0
	}
	return float32(v.voxels[idx]) / 255
}

// voxelIndex maps a world position to a flat voxel index, reporting false
// for positions outside the volume.
func (v *densityVolume) voxelIndex(world mgl32.Vec3) (int, bool) {
	res := float32(v.resolution)
	var coord [3]int
	for axis := 0; axis < 3; axis++ {
		if v.size[axis] <= 0 {
			return 0, false
		}
		normalized := (world[axis] - v.origin[axis]) / v.size[axis]
		if normalized < 0 || normalized >= 1 {
			return 0, false
		}
		coord[axis] = int(normalized * res)
	}
	return (coord[2]*v.resolution+coord[1])*v.resolution + coord[0], true
}

func (v *densityVolume) minVoxelExtent() float32 {
	res := float32(v.resolution)
	extent := v.size.X() / res
	if e := v.size.Y() / res; e < extent {
		extent = e
	}
	if e := v.size.Z() / res; e < extent {
		extent = e
	}
	if extent <= 0 {
		extent = 1e-3
	}
	return extent
}

func (v *densityVolume) Staging() common.TextureStagingData {
	return common.TextureStagingData{
		Texels:        v.voxels,
		Width:         uint32(v.resolution),
		Height:        uint32(v.resolution),
		Depth:         uint32(v.resolution),
		Format:        common.DensityVolumeFormat,
		BytesPerTexel: 1,
	}
}
