package volume

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/strandworks/strand-go/engine/hair"
)

func buildTestGeometry(t *testing.T, strands []hair.Strand) *hair.Geometry {
	t.Helper()
	g, err := hair.NewHairStyle("test", hair.WithStrands(strands)).BuildGeometry()
	if err != nil {
		t.Fatalf("BuildGeometry failed: %v", err)
	}
	return g
}

func TestSampleOutsideVolumeIsZero(t *testing.T) {
	v := NewDensityVolume(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}, WithResolution(8))

	outside := []mgl32.Vec3{
		{-0.5, 0.5, 0.5},
		{0.5, 1.5, 0.5},
		{100, 100, 100},
		{0.5, 0.5, -1e9},
	}
	for _, p := range outside {
		if d := v.Sample(p); d != 0 {
			t.Errorf("Sample(%v) outside volume: expected 0, got %v", p, d)
		}
	}
}

func TestVoxelizeSplatsSegments(t *testing.T) {
	g := buildTestGeometry(t, []hair.Strand{
		{Points: []mgl32.Vec3{{0.1, 0.5, 0.5}, {0.9, 0.5, 0.5}}},
	})

	v := NewDensityVolume(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}, WithResolution(8))
	v.Voxelize(g)

	if d := v.Sample(mgl32.Vec3{0.5, 0.5, 0.5}); d <= 0 {
		t.Errorf("expected density along the segment, got %v", d)
	}
	if d := v.Sample(mgl32.Vec3{0.5, 0.9, 0.5}); d != 0 {
		t.Errorf("expected no density away from the segment, got %v", d)
	}

	v.Clear()
	if d := v.Sample(mgl32.Vec3{0.5, 0.5, 0.5}); d != 0 {
		t.Errorf("expected zero density after Clear, got %v", d)
	}
}

func TestVoxelizeSaturates(t *testing.T) {
	strands := make([]hair.Strand, 20)
	for i := range strands {
		strands[i] = hair.Strand{Points: []mgl32.Vec3{{0.45, 0.5, 0.5}, {0.55, 0.5, 0.5}}}
	}
	g := buildTestGeometry(t, strands)

	v := NewDensityVolume(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}, WithResolution(4))
	v.Voxelize(g)

	if d := v.Sample(mgl32.Vec3{0.5, 0.5, 0.5}); d != 1 {
		t.Errorf("expected saturated density 1, got %v", d)
	}
}

func TestVolumeForGeometryCoversBounds(t *testing.T) {
	g := buildTestGeometry(t, []hair.Strand{
		{Points: []mgl32.Vec3{{-1, -2, -3}, {1, 2, 3}}},
	})

	v := NewDensityVolumeForGeometry(g, WithResolution(16))
	min, max := g.Bounds()
	if v.Origin() != min {
		t.Errorf("origin %v does not match bounds min %v", v.Origin(), min)
	}
	if got := v.Origin().Add(v.Size()); got != max {
		t.Errorf("origin+size %v does not match bounds max %v", got, max)
	}
}

func TestStagingDescribesVoxels(t *testing.T) {
	v := NewDensityVolume(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}, WithResolution(8))
	s := v.Staging()
	if s.Width != 8 || s.Height != 8 || s.Depth != 8 {
		t.Errorf("staging extent wrong: %dx%dx%d", s.Width, s.Height, s.Depth)
	}
	if len(s.Texels) != 8*8*8 {
		t.Errorf("staging texel count wrong: %d", len(s.Texels))
	}
	if s.BytesPerTexel != 1 {
		t.Errorf("staging texel stride wrong: %d", s.BytesPerTexel)
	}
}
