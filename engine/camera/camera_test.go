package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestTargetProjectsToCenter(t *testing.T) {
	c := NewCamera(
		WithPosition(mgl32.Vec3{0, 0, 3}),
		WithTarget(mgl32.Vec3{0, 0, 0}),
		WithPerspective(mgl32.DegToRad(60), 16.0/9.0, 0.1, 100),
	)

	clip := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if clip.W() <= 0 {
		t.Fatal("target behind the camera")
	}
	x := clip.X() / clip.W()
	y := clip.Y() / clip.W()
	z := clip.Z() / clip.W()
	if math.Abs(float64(x)) > 1e-5 || math.Abs(float64(y)) > 1e-5 {
		t.Errorf("target must project to screen center, got (%v, %v)", x, y)
	}
	if z < 0 || z > 1 {
		t.Errorf("depth must be in WebGPU [0, 1] range, got %v", z)
	}
}

func TestDepthRangeIsZeroToOne(t *testing.T) {
	c := NewCamera(
		WithPosition(mgl32.Vec3{0, 0, 5}),
		WithTarget(mgl32.Vec3{0, 0, 0}),
		WithPerspective(mgl32.DegToRad(45), 1, 1, 10),
	)

	proj := c.ProjectionMatrix()
	nearClip := proj.Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	farClip := proj.Mul4x1(mgl32.Vec4{0, 0, -10, 1})

	if z := nearClip.Z() / nearClip.W(); math.Abs(float64(z)) > 1e-5 {
		t.Errorf("near plane must map to depth 0, got %v", z)
	}
	if z := farClip.Z() / farClip.W(); math.Abs(float64(z-1)) > 1e-5 {
		t.Errorf("far plane must map to depth 1, got %v", z)
	}
}

func TestPrimaryRayCenterAimsAtTarget(t *testing.T) {
	c := NewCamera(
		WithPosition(mgl32.Vec3{1, 2, 5}),
		WithTarget(mgl32.Vec3{0, 0, 0}),
	)

	// Odd dimensions put a pixel center exactly at NDC (0, 0).
	origin, dir := c.PrimaryRay(50, 50, 101, 101)
	if origin != (mgl32.Vec3{1, 2, 5}) {
		t.Errorf("ray origin must be the camera position, got %v", origin)
	}
	want := mgl32.Vec3{0, 0, 0}.Sub(origin).Normalize()
	if !dir.ApproxEqualThreshold(want, 1e-4) {
		t.Errorf("center ray must aim at the target: got %v, want %v", dir, want)
	}
	if math.Abs(float64(dir.Len()-1)) > 1e-5 {
		t.Errorf("ray direction is not unit length: %v", dir.Len())
	}
}

func TestPrimaryRayMatchesProjection(t *testing.T) {
	c := NewCamera(
		WithPosition(mgl32.Vec3{0, 1, 4}),
		WithTarget(mgl32.Vec3{0, 0, 0}),
		WithPerspective(mgl32.DegToRad(60), 1.5, 0.1, 100),
	)
	const width, height = 320, 240

	// A point along a primary ray must rasterize back to the pixel the ray
	// came from. This is the agreement that keeps the two backends aligned.
	pixels := [][2]int{{160, 120}, {40, 30}, {300, 200}, {0, 0}}
	for _, p := range pixels {
		origin, dir := c.PrimaryRay(p[0], p[1], width, height)
		world := origin.Add(dir.Mul(5))
		clip := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{world.X(), world.Y(), world.Z(), 1})
		if clip.W() <= 0 {
			t.Fatalf("pixel %v: sample point behind the camera", p)
		}
		sx := (clip.X()/clip.W()*0.5 + 0.5) * width
		sy := (1 - (clip.Y()/clip.W()*0.5 + 0.5)) * height
		if math.Abs(float64(sx-(float32(p[0])+0.5))) > 0.51 || math.Abs(float64(sy-(float32(p[1])+0.5))) > 0.51 {
			t.Errorf("pixel %v: ray point projects to (%v, %v)", p, sx, sy)
		}
	}
}

func TestGPUCameraUniformMarshal(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{3, 2, 1}))
	u := BuildGPUCameraUniform(c)
	if u.Size() != 80 {
		t.Errorf("uniform size: expected 80, got %d", u.Size())
	}
	if len(u.Marshal()) != 80 {
		t.Errorf("marshaled length: expected 80, got %d", len(u.Marshal()))
	}
	if u.CameraPosition != [3]float32{3, 2, 1} {
		t.Errorf("camera position wrong: %v", u.CameraPosition)
	}
}
