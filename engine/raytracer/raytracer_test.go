package raytracer

import (
	"bytes"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/strandworks/strand-go/engine/camera"
	"github.com/strandworks/strand-go/engine/hair"
	"github.com/strandworks/strand-go/engine/light"
	"github.com/strandworks/strand-go/engine/shading"
	"github.com/strandworks/strand-go/engine/volume"
)

func buildPatchGeometry(t *testing.T, thickness float32) *hair.Geometry {
	t.Helper()
	var strands []hair.Strand
	for i := 0; i < 40; i++ {
		x := -0.5 + float32(i)*0.025
		strands = append(strands, hair.Strand{
			Points: []mgl32.Vec3{{x, 0, 0}, {x, 0.5, 0.02}, {x, 1, 0}},
		})
	}
	style := hair.NewHairStyle("patch",
		hair.WithStrands(strands),
		hair.WithDefaultThickness(thickness),
	)
	g, err := style.BuildGeometry()
	if err != nil {
		t.Fatalf("BuildGeometry: %v", err)
	}
	return g
}

func TestIntersectCapsule(t *testing.T) {
	pa := mgl32.Vec3{0, -1, 0}
	pb := mgl32.Vec3{0, 1, 0}

	// Perpendicular ray through the middle of the body.
	tHit, u, ok := intersectCapsule(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}, pa, pb, 0.5)
	if !ok {
		t.Fatalf("centered perpendicular ray should hit")
	}
	if math32.Abs(tHit-4.5) > 1e-5 || math32.Abs(u-0.5) > 1e-5 {
		t.Fatalf("want t=4.5 u=0.5, got t=%v u=%v", tHit, u)
	}

	// Offset past the radius: clean miss.
	if _, _, ok := intersectCapsule(mgl32.Vec3{2, 0, 5}, mgl32.Vec3{0, 0, -1}, pa, pb, 0.5); ok {
		t.Fatalf("ray 2 units off the axis should miss a 0.5 radius capsule")
	}

	// Parallel to the axis from above: nearest cap, not the far one.
	tHit, u, ok = intersectCapsule(mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, -1, 0}, pa, pb, 0.5)
	if !ok {
		t.Fatalf("axis-aligned ray should hit the top cap")
	}
	if math32.Abs(tHit-0.5) > 1e-5 || u != 1 {
		t.Fatalf("want top cap at t=0.5 u=1, got t=%v u=%v", tHit, u)
	}

	// Behind the ray origin: no hit at negative distance.
	if _, _, ok := intersectCapsule(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, -1}, pa, pb, 0.5); ok {
		t.Fatalf("capsule behind the origin should not register")
	}
}

func TestBVHMatchesBruteForce(t *testing.T) {
	g := buildPatchGeometry(t, 0.01)
	tree := buildBVH(g)

	rays := []struct {
		origin mgl32.Vec3
		dir    mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0.5, 3}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{-0.4, 0.2, 2}, mgl32.Vec3{0.05, 0.1, -1}.Normalize()},
		{mgl32.Vec3{0.3, 1.2, 2}, mgl32.Vec3{-0.1, -0.3, -1}.Normalize()},
		{mgl32.Vec3{0, 0.5, 3}, mgl32.Vec3{0, 1, 0}}, // points away from the patch
		{mgl32.Vec3{2, 0.5, 0}, mgl32.Vec3{-1, 0, 0}.Normalize()},
	}

	for ri, ray := range rays {
		brute := hitRecord{t: 1e30, segment: -1}
		for seg := 0; seg < g.SegmentCount(); seg++ {
			p0, r0 := g.SegmentPosition(seg, 0)
			p1, r1 := g.SegmentPosition(seg, 1)
			radius := max(r0, r1)
			if tHit, u, ok := intersectCapsule(ray.origin, ray.dir, p0, p1, radius); ok && tHit < brute.t {
				brute = hitRecord{t: tHit, u: u, segment: seg}
			}
		}

		got, ok := tree.intersect(g, ray.origin, ray.dir)
		if ok != (brute.segment >= 0) {
			t.Fatalf("ray %d: bvh hit=%v, brute force hit=%v", ri, ok, brute.segment >= 0)
		}
		if !ok {
			continue
		}
		if got.segment != brute.segment || math32.Abs(got.t-brute.t) > 1e-6 {
			t.Fatalf("ray %d: bvh (seg %d, t %v), brute force (seg %d, t %v)",
				ri, got.segment, got.t, brute.segment, brute.t)
		}
	}
}

func TestRenderShadesHitsAndMisses(t *testing.T) {
	g := buildPatchGeometry(t, 0.05)

	l := light.NewLight(light.LightTypeDirectional, light.WithDirection(mgl32.Vec3{0, -1, 0}))
	boundsMin, boundsMax := g.Bounds()
	m := light.NewDeepShadowMap(light.WithShadowMapResolution(64), light.WithShadowMapLayers(8))
	m.Build(g, l.SpaceTransform(boundsMin, boundsMax))
	v := volume.NewDensityVolumeForGeometry(g, volume.WithResolution(32))
	v.Voxelize(g)

	evaluator, err := shading.NewFrameEvaluator(shading.DefaultHairMaterial(), l, m, v, shading.ModeCombined, shading.NewParams())
	if err != nil {
		t.Fatalf("NewFrameEvaluator: %v", err)
	}

	cam := camera.NewCamera(
		camera.WithPosition(mgl32.Vec3{0, 0.5, 3}),
		camera.WithTarget(mgl32.Vec3{0, 0.5, 0}),
	)

	tracer := NewRaytracer(WithWorkers(2), WithTileSize(16))
	if err := tracer.Attach(g); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	background := mgl32.Vec3{0.02, 0.02, 0.02}
	fb := NewFramebuffer(64, 64)
	tracer.Render(fb, cam, l, evaluator)

	center := fb.Pixel(32, 32)
	if center.Sub(background).Len() < 1e-3 {
		t.Fatalf("center pixel should hit the strand patch, got background %v", center)
	}
	corner := fb.Pixel(0, 0)
	if corner.Sub(background).Len() > 1e-2 {
		t.Fatalf("corner pixel should miss, got %v", corner)
	}

	// Same inputs, same image: tiles race only over disjoint pixels.
	fb2 := NewFramebuffer(64, 64)
	tracer.Render(fb2, cam, l, evaluator)
	if !bytes.Equal(fb.Pixels(), fb2.Pixels()) {
		t.Fatalf("repeated renders of a frozen frame should be identical")
	}
}

func TestRenderPanicsWithoutGeometry(t *testing.T) {
	tracer := NewRaytracer(WithWorkers(1))
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("Render without geometry should panic")
		}
		if _, ok := r.(BackendMismatch); !ok {
			t.Fatalf("want BackendMismatch panic, got %T", r)
		}
	}()
	tracer.Render(NewFramebuffer(8, 8), camera.NewCamera(), light.NewLight(light.LightTypeDirectional), nil)
}

func TestAttachRejectsEmptyGeometry(t *testing.T) {
	tracer := NewRaytracer(WithWorkers(1))
	if err := tracer.Attach(nil); err == nil {
		t.Fatalf("nil geometry should be rejected")
	}
}

func TestFramebufferEncoding(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Clear(mgl32.Vec3{1, 0.5, 0})
	pixel := fb.Pixel(1, 1)
	if pixel.X() != 1 || math32.Abs(pixel.Y()-0.5) > 1.0/255 || pixel.Z() != 0 {
		t.Fatalf("clear color round trip: got %v", pixel)
	}

	fb.SetPixel(0, 0, mgl32.Vec3{2, -1, 0.25}) // clamps to [0, 1]
	pixel = fb.Pixel(0, 0)
	if pixel.X() != 1 || pixel.Y() != 0 || math32.Abs(pixel.Z()-0.25) > 1.0/255 {
		t.Fatalf("set pixel clamp: got %v", pixel)
	}

	// Writes outside the framebuffer are dropped, not wrapped.
	fb.SetPixel(-1, 0, mgl32.Vec3{1, 1, 1})
	fb.SetPixel(2, 2, mgl32.Vec3{1, 1, 1})
	if got := fb.Pixel(1, 0); got != (mgl32.Vec3{1, float32(128) / 255, 0}) {
		t.Fatalf("out-of-range writes should not land anywhere, got %v", got)
	}
}
