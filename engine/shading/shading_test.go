package shading

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/strandworks/strand-go/engine/hair"
	"github.com/strandworks/strand-go/engine/light"
	"github.com/strandworks/strand-go/engine/volume"
)

func vecNear(a, b mgl32.Vec3, eps float32) bool {
	return a.ApproxEqualThreshold(b, eps)
}

func TestKajiyaKayLightParallelToTangent(t *testing.T) {
	// Light along the tangent: sinTL = 0 kills the diffuse term, and with
	// the eye perpendicular the specular base is 0, so the result is black.
	got := KajiyaKay(
		mgl32.Vec3{0.32, 0.228, 0.128}, mgl32.Vec3{1, 1, 1}, 50,
		mgl32.Vec3{0, 1, 0}, // T
		mgl32.Vec3{0, 1, 0}, // L
		mgl32.Vec3{0, 0, -1}, // E
	)
	if !vecNear(got, mgl32.Vec3{0, 0, 0}, 1e-6) {
		t.Errorf("expected black, got %v", got)
	}
}

func TestKajiyaKayLightAndEyePerpendicular(t *testing.T) {
	// Light and eye coincide, perpendicular to the tangent: full diffuse
	// plus full specular.
	diffuse := mgl32.Vec3{0.32, 0.228, 0.128}
	specular := mgl32.Vec3{1, 1, 1}
	got := KajiyaKay(diffuse, specular, 50,
		mgl32.Vec3{1, 0, 0}, // T
		mgl32.Vec3{0, 1, 0}, // L
		mgl32.Vec3{0, 1, 0}, // E
	)
	want := diffuse.Add(specular)
	if !vecNear(got, want, 1e-5) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestKajiyaKayNonNegativeAndFinite(t *testing.T) {
	diffuse := mgl32.Vec3{0.32, 0.228, 0.128}
	specular := mgl32.Vec3{1, 1, 1}
	directions := []mgl32.Vec3{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
		mgl32.Vec3{1, 1, 1}.Normalize(),
		mgl32.Vec3{-1, 2, -3}.Normalize(),
	}
	exponents := []float32{0, 1, 50, 80.5}

	for _, tangent := range directions {
		for _, lightDir := range directions {
			for _, eyeDir := range directions {
				for _, p := range exponents {
					got := KajiyaKay(diffuse, specular, p, tangent, lightDir, eyeDir)
					for axis := 0; axis < 3; axis++ {
						v := float64(got[axis])
						if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
							t.Fatalf("shade(T=%v L=%v E=%v p=%v) = %v", tangent, lightDir, eyeDir, p, got)
						}
					}
				}
			}
		}
	}
}

func TestModeResolution(t *testing.T) {
	tests := []struct {
		mode          Mode
		sampleShadows bool
		sampleAO      bool
	}{
		{ModeCombined, true, true},
		{ModeSelfShadowOnly, true, false},
		{ModeAmbientOcclusionOnly, false, true},
	}
	for _, tt := range tests {
		shadows, ao := tt.mode.resolve()
		if shadows != tt.sampleShadows || ao != tt.sampleAO {
			t.Errorf("%v resolved to (%v, %v)", tt.mode, shadows, ao)
		}
	}
	if Mode(7).Valid() {
		t.Error("Mode(7) must be invalid")
	}
}

func buildOccluderScene(t *testing.T) (light.DeepShadowMap, volume.DensityVolume, *hair.Geometry) {
	t.Helper()
	strands := make([]hair.Strand, 30)
	for i := range strands {
		z := -0.1 + 0.2*float32(i)/29
		strands[i] = hair.Strand{Points: []mgl32.Vec3{{-0.5, 0.5, z}, {0.5, 0.5, z}}}
	}
	// One strand below the canopy to shade.
	strands = append(strands, hair.Strand{Points: []mgl32.Vec3{{-0.5, -0.5, 0}, {0.5, -0.5, 0}}})

	g, err := hair.NewHairStyle("scene", hair.WithStrands(strands)).BuildGeometry()
	if err != nil {
		t.Fatalf("BuildGeometry failed: %v", err)
	}

	l := light.NewLight(light.LightTypeDirectional, light.WithDirection(mgl32.Vec3{0, -1, 0}))
	min, max := g.Bounds()
	m := light.NewDeepShadowMap(light.WithShadowMapResolution(128), light.WithShadowMapLayers(16))
	m.Build(g, l.SpaceTransform(min, max))

	v := volume.NewDensityVolumeForGeometry(g, volume.WithResolution(32))
	v.Voxelize(g)

	return m, v, g
}

func TestApproximateDeepShadowsRange(t *testing.T) {
	m, _, _ := buildOccluderScene(t)

	shadowed := ApproximateDeepShadows(m, mgl32.Vec3{0, -0.5, 0}, 3, 1, 4, 0)
	lit := ApproximateDeepShadows(m, mgl32.Vec3{0, 0.6, 0}, 3, 1, 4, 0)

	if shadowed < 0 || shadowed > 1 || lit < 0 || lit > 1 {
		t.Fatalf("visibility out of range: shadowed %v, lit %v", shadowed, lit)
	}
	if shadowed >= lit {
		t.Errorf("point under the canopy must be darker: shadowed %v, lit %v", shadowed, lit)
	}

	// Far outside the light frustum: fully lit, never an error.
	if far := ApproximateDeepShadows(m, mgl32.Vec3{1e6, 1e6, 1e6}, 3, 1, 4, 0); far != 1 {
		t.Errorf("out-of-range sample must be fully lit, got %v", far)
	}
}

func TestApproximateDeepShadowsMonotonicInScale(t *testing.T) {
	m, _, _ := buildOccluderScene(t)
	pos := mgl32.Vec3{0, -0.5, 0}

	prev := float32(1)
	for _, scale := range []float32{0.5, 1, 2, 4, 8} {
		vis := ApproximateDeepShadows(m, pos, 3, 1, scale, 0)
		if vis > prev {
			t.Errorf("visibility must not increase with occlusion scale: %v then %v", prev, vis)
		}
		prev = vis
	}
}

func TestLocalAmbientOcclusionAllZeroVolumeIsUnoccluded(t *testing.T) {
	v := volume.NewDensityVolume(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}, volume.WithResolution(16))
	if occ := LocalAmbientOcclusion(v, mgl32.Vec3{0.5, 0.5, 0.5}, 3, 0.05, 24, 0.0); occ != 1 {
		t.Errorf("all-zero volume must read unoccluded, got %v", occ)
	}
}

func TestLocalAmbientOcclusionDenseNeighborhoodDarkens(t *testing.T) {
	_, v, _ := buildOccluderScene(t)

	inCanopy := LocalAmbientOcclusion(v, mgl32.Vec3{0, 0.5, 0}, 3, 0.02, 24, 0.0)
	alone := LocalAmbientOcclusion(v, mgl32.Vec3{0, -0.5, 0}, 3, 0.02, 24, 0.0)

	if inCanopy < 0 || inCanopy > 1 || alone < 0 || alone > 1 {
		t.Fatalf("occlusion out of range: %v %v", inCanopy, alone)
	}
	if inCanopy >= alone {
		t.Errorf("dense neighborhood must be more occluded: canopy %v, alone %v", inCanopy, alone)
	}
}

func TestLocalAmbientOcclusionFarOutsideVolume(t *testing.T) {
	_, v, _ := buildOccluderScene(t)
	if occ := LocalAmbientOcclusion(v, mgl32.Vec3{1e6, -1e6, 1e6}, 3, 0.05, 24, 0.0); occ != 1 {
		t.Errorf("samples far outside the volume must read unoccluded, got %v", occ)
	}
}

func TestEvaluatorCombinedOcclusionIsProduct(t *testing.T) {
	m, v, _ := buildOccluderScene(t)
	l := light.NewLight(light.LightTypeDirectional, light.WithDirection(mgl32.Vec3{0, -1, 0}))
	params := NewParams()

	combined, err := NewFrameEvaluator(DefaultHairMaterial(), l, m, v, ModeCombined, params)
	if err != nil {
		t.Fatalf("NewFrameEvaluator failed: %v", err)
	}
	shadowOnly, err := NewFrameEvaluator(DefaultHairMaterial(), l, m, v, ModeSelfShadowOnly, params)
	if err != nil {
		t.Fatalf("NewFrameEvaluator failed: %v", err)
	}
	aoOnly, err := NewFrameEvaluator(DefaultHairMaterial(), l, m, v, ModeAmbientOcclusionOnly, params)
	if err != nil {
		t.Fatalf("NewFrameEvaluator failed: %v", err)
	}

	pos := mgl32.Vec3{0, 0.5, 0}
	product := shadowOnly.Occlusion(pos) * aoOnly.Occlusion(pos)
	got := combined.Occlusion(pos)
	if math.Abs(float64(got-product)) > 1e-6 {
		t.Errorf("combined occlusion %v is not the product of sub-occlusions %v", got, product)
	}
}

func TestEvaluatorRejectsInvalidInputs(t *testing.T) {
	m, v, _ := buildOccluderScene(t)
	l := light.NewLight(light.LightTypeDirectional)

	if _, err := NewFrameEvaluator(DefaultHairMaterial(), l, m, v, Mode(42), NewParams()); err == nil {
		t.Error("expected error for undefined mode")
	}

	bad := NewParams(WithShadowKernel(0, 1))
	if _, err := NewFrameEvaluator(DefaultHairMaterial(), l, m, v, ModeCombined, bad); err == nil {
		t.Error("expected error for non-positive kernel size")
	}
	bad = NewParams(WithAmbientOcclusion(3, -0.5, 24, 0.01))
	if _, err := NewFrameEvaluator(DefaultHairMaterial(), l, m, v, ModeCombined, bad); err == nil {
		t.Error("expected error for negative step scale")
	}
}

func TestGPUShadingParamsMarshal(t *testing.T) {
	v := volume.NewDensityVolume(mgl32.Vec3{-1, -2, -3}, mgl32.Vec3{2, 4, 6}, volume.WithResolution(8))
	params := NewParams(WithShadowKernel(5, 2))
	g := BuildGPUShadingParams(DefaultHairMaterial(), params, ModeSelfShadowOnly, v)

	if g.Size() != 96 {
		t.Errorf("GPUShadingParams size: expected 96, got %d", g.Size())
	}
	if len(g.Marshal()) != 96 {
		t.Errorf("marshaled length: expected 96, got %d", len(g.Marshal()))
	}
	if g.KernelSize != 5 || g.Stride != 2 {
		t.Errorf("kernel settings wrong: %d %d", g.KernelSize, g.Stride)
	}
	if g.SampleShadows != 1 || g.SampleAO != 0 {
		t.Errorf("mode booleans wrong: %d %d", g.SampleShadows, g.SampleAO)
	}
	if g.VolumeOrigin != [4]float32{-1, -2, -3, params.AODensityThreshold} {
		t.Errorf("volume origin wrong: %v", g.VolumeOrigin)
	}
	if g.Diffuse[3] != 50 {
		t.Errorf("specular exponent wrong: %v", g.Diffuse[3])
	}
}
