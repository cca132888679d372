package raytracer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Segments are intersected as capsules: a cylinder around the segment axis
// with spherical caps, radius taken from the strand thickness. The quadratic
// below solves for the nearest entry distance along the ray.

// intersectCapsule intersects a ray with the capsule spanning pa to pb with
// the given radius. Returns the ray distance t, the normalized axis
// parameter u in [0, 1], and whether the ray hits at positive distance.
func intersectCapsule(origin, dir, pa, pb mgl32.Vec3, radius float32) (float32, float32, bool) {
	ba := pb.Sub(pa)
	oa := origin.Sub(pa)

	baba := ba.Dot(ba)
	bard := ba.Dot(dir)
	baoa := ba.Dot(oa)
	rdoa := dir.Dot(oa)
	oaoa := oa.Dot(oa)

	if baba <= 0 {
		// Degenerate segment: intersect the cap sphere at pa.
		return intersectSphere(origin, dir, pa, radius)
	}

	a := baba - bard*bard
	b := baba*rdoa - baoa*bard
	c := baba*oaoa - baoa*baoa - radius*radius*baba

	if a <= 1e-12 {
		// Ray parallel to the axis: only the caps can be hit. Keep the nearer.
		tA, _, okA := intersectSphere(origin, dir, pa, radius)
		tB, _, okB := intersectSphere(origin, dir, pb, radius)
		switch {
		case okA && (!okB || tA <= tB):
			return tA, 0, true
		case okB:
			return tB, 1, true
		}
		return 0, 0, false
	}

	h := b*b - a*c
	if h < 0 {
		return 0, 0, false
	}

	t := (-b - math32.Sqrt(h)) / a
	y := baoa + t*bard
	if t > 0 && y > 0 && y < baba {
		return t, y / baba, true
	}

	// Entry point lies beyond an end of the cylinder body: the cap on that
	// end is the only remaining candidate.
	capCenter := pa
	capU := float32(0)
	if y > 0 {
		capCenter = pb
		capU = 1
	}
	t, _, ok := intersectSphere(origin, dir, capCenter, radius)
	return t, capU, ok
}

// intersectSphere intersects a ray with a sphere, returning the nearest
// positive distance.
func intersectSphere(origin, dir, center mgl32.Vec3, radius float32) (float32, float32, bool) {
	oc := origin.Sub(center)
	b := dir.Dot(oc)
	c := oc.Dot(oc) - radius*radius
	h := b*b - c
	if h < 0 {
		return 0, 0, false
	}
	t := -b - math32.Sqrt(h)
	if t <= 0 {
		return 0, 0, false
	}
	return t, 0, true
}

// intersectAABB performs the slab test against an axis-aligned box using a
// precomputed reciprocal direction. Returns false when the box is missed or
// lies entirely beyond tMax.
func intersectAABB(origin, invDir mgl32.Vec3, boxMin, boxMax mgl32.Vec3, tMax float32) bool {
	tNear := float32(0)
	tFar := tMax
	for axis := 0; axis < 3; axis++ {
		t0 := (boxMin[axis] - origin[axis]) * invDir[axis]
		t1 := (boxMax[axis] - origin[axis]) * invDir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
		if tNear > tFar {
			return false
		}
	}
	return true
}
