package raytracer

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/strandworks/strand-go/engine/hair"
)

// bvhLeafSize caps the number of segments per leaf. Small leaves keep the
// capsule tests per ray low; the tree stays shallow enough that build time is
// negligible next to voxelization.
const bvhLeafSize = 4

// bvhNode is one node of the flattened hierarchy. Interior nodes carry child
// indices; leaves carry a range into the ordered segment list.
type bvhNode struct {
	boundsMin mgl32.Vec3
	boundsMax mgl32.Vec3
	left      int // child node index, -1 for leaves
	right     int
	start     int // first segment in order, leaves only
	count     int
}

// bvh is a bounding volume hierarchy over the geometry's segment capsules.
// Built once per Attach, then read-only across concurrent tile workers.
type bvh struct {
	nodes []bvhNode
	order []int // segment ids, permuted so each leaf's range is contiguous
}

// hitRecord describes the closest capsule intersection along a ray.
type hitRecord struct {
	t       float32 // ray distance
	u       float32 // normalized position along the segment axis
	segment int
}

func buildBVH(g *hair.Geometry) *bvh {
	count := g.SegmentCount()
	mins := make([]mgl32.Vec3, count)
	maxs := make([]mgl32.Vec3, count)
	centroids := make([]mgl32.Vec3, count)
	order := make([]int, count)

	for seg := 0; seg < count; seg++ {
		p0, r0 := g.SegmentPosition(seg, 0)
		p1, r1 := g.SegmentPosition(seg, 1)
		radius := r0
		if r1 > radius {
			radius = r1
		}
		pad := mgl32.Vec3{radius, radius, radius}
		mins[seg] = vecMin(p0, p1).Sub(pad)
		maxs[seg] = vecMax(p0, p1).Add(pad)
		centroids[seg] = p0.Add(p1).Mul(0.5)
		order[seg] = seg
	}

	b := &bvh{order: order}
	b.split(0, count, mins, maxs, centroids)
	return b
}

// split builds the subtree over order[start:end] and returns its node index.
func (b *bvh) split(start, end int, mins, maxs, centroids []mgl32.Vec3) int {
	boundsMin := mgl32.Vec3{1e30, 1e30, 1e30}
	boundsMax := mgl32.Vec3{-1e30, -1e30, -1e30}
	for _, seg := range b.order[start:end] {
		boundsMin = vecMin(boundsMin, mins[seg])
		boundsMax = vecMax(boundsMax, maxs[seg])
	}

	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, bvhNode{
		boundsMin: boundsMin,
		boundsMax: boundsMax,
		left:      -1,
		right:     -1,
		start:     start,
		count:     end - start,
	})

	if end-start <= bvhLeafSize {
		return nodeIndex
	}

	// Median split on the widest centroid axis.
	extent := boundsMax.Sub(boundsMin)
	axis := 0
	if extent.Y() > extent[axis] {
		axis = 1
	}
	if extent.Z() > extent[axis] {
		axis = 2
	}
	span := b.order[start:end]
	sort.Slice(span, func(i, j int) bool {
		return centroids[span[i]][axis] < centroids[span[j]][axis]
	})
	mid := start + (end-start)/2

	left := b.split(start, mid, mins, maxs, centroids)
	right := b.split(mid, end, mins, maxs, centroids)
	b.nodes[nodeIndex].left = left
	b.nodes[nodeIndex].right = right
	b.nodes[nodeIndex].count = 0
	return nodeIndex
}

// intersect walks the hierarchy and returns the closest capsule hit.
func (b *bvh) intersect(g *hair.Geometry, origin, dir mgl32.Vec3) (hitRecord, bool) {
	closest := hitRecord{t: 1e30, segment: -1}
	if len(b.nodes) == 0 {
		return closest, false
	}

	invDir := mgl32.Vec3{
		safeReciprocal(dir.X()),
		safeReciprocal(dir.Y()),
		safeReciprocal(dir.Z()),
	}

	stack := make([]int, 0, 64)
	stack = append(stack, 0)
	for len(stack) > 0 {
		nodeIndex := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &b.nodes[nodeIndex]

		if !intersectAABB(origin, invDir, node.boundsMin, node.boundsMax, closest.t) {
			continue
		}
		if node.left >= 0 {
			stack = append(stack, node.left, node.right)
			continue
		}

		for _, seg := range b.order[node.start : node.start+node.count] {
			p0, r0 := g.SegmentPosition(seg, 0)
			p1, r1 := g.SegmentPosition(seg, 1)
			radius := r0
			if r1 > radius {
				radius = r1
			}
			t, u, ok := intersectCapsule(origin, dir, p0, p1, radius)
			if !ok {
				continue
			}
			// Ties go to the lower segment id (adjacent capsules share a
			// tangent point) so traversal order cannot affect the result.
			if t < closest.t || (t == closest.t && seg < closest.segment) {
				closest = hitRecord{t: t, u: u, segment: seg}
			}
		}
	}

	return closest, closest.segment >= 0
}

func vecMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min(a.X(), b.X()), min(a.Y(), b.Y()), min(a.Z(), b.Z())}
}

func vecMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max(a.X(), b.X()), max(a.Y(), b.Y()), max(a.Z(), b.Z())}
}

func safeReciprocal(v float32) float32 {
	if v == 0 {
		return 1e30
	}
	return 1 / v
}
