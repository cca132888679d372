package raster

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/strandworks/strand-go/common"
	"github.com/strandworks/strand-go/engine/hair"
	"github.com/strandworks/strand-go/engine/light"
	"github.com/strandworks/strand-go/engine/shading"
	"github.com/strandworks/strand-go/engine/volume"
)

// buildShadedScene assembles a dense strand patch with a directional light
// overhead, plus the built occlusion structures both backends would sample.
func buildShadedScene(t *testing.T) (*hair.Geometry, light.Light, light.DeepShadowMap, volume.DensityVolume) {
	t.Helper()

	var strands []hair.Strand
	for i := 0; i < 40; i++ {
		x := -0.5 + float32(i)*0.025
		strands = append(strands, hair.Strand{
			Points: []mgl32.Vec3{{x, 0, 0}, {x, 0.5, 0.05}, {x, 1, 0}},
		})
	}
	style := hair.NewHairStyle("patch", hair.WithStrands(strands))
	g, err := style.BuildGeometry()
	if err != nil {
		t.Fatalf("BuildGeometry: %v", err)
	}

	l := light.NewLight(light.LightTypeDirectional,
		light.WithDirection(mgl32.Vec3{0, -1, 0}),
		light.WithColor(mgl32.Vec3{1, 0.95, 0.9}),
		light.WithIntensity(1.5),
	)

	boundsMin, boundsMax := g.Bounds()
	m := light.NewDeepShadowMap(light.WithShadowMapResolution(64), light.WithShadowMapLayers(8))
	m.Build(g, l.SpaceTransform(boundsMin, boundsMax))

	v := volume.NewDensityVolumeForGeometry(g, volume.WithResolution(32))
	v.Voxelize(g)

	return g, l, m, v
}

// relativeDiff returns |a-b| scaled by the larger magnitude, or the absolute
// difference when both values are near zero.
func relativeDiff(a, b float32) float32 {
	diff := math32.Abs(a - b)
	scale := math32.Max(math32.Abs(a), math32.Abs(b))
	if scale < 1e-4 {
		return diff
	}
	return diff / scale
}

func TestReferenceShadeMatchesEvaluator(t *testing.T) {
	g, l, m, v := buildShadedScene(t)

	material := shading.DefaultHairMaterial()
	params := shading.NewParams()

	for _, mode := range []shading.Mode{shading.ModeCombined, shading.ModeSelfShadowOnly, shading.ModeAmbientOcclusionOnly} {
		evaluator, err := shading.NewFrameEvaluator(material, l, m, v, mode, params)
		if err != nil {
			t.Fatalf("NewFrameEvaluator(%v): %v", mode, err)
		}

		gpuParams := shading.BuildGPUShadingParams(material, params, mode, v)
		gpuLight := light.BuildGPULight(l, m.ViewProjection())
		shadowStaging := m.Staging()
		volumeStaging := v.Staging()
		cameraPosition := mgl32.Vec3{0, 0.5, 3}

		for seg := 0; seg < g.SegmentCount(); seg += 7 {
			for _, u := range []float32{0, 0.5, 1} {
				position, _ := g.SegmentPosition(seg, u)
				tangent := g.SegmentTangent(seg, u)

				want := evaluator.Shade(shading.Context{
					Position: position,
					Tangent:  tangent,
					EyeDir:   cameraPosition.Sub(position).Normalize(),
					LightDir: l.VectorTo(position),
				})
				got := ReferenceShade(gpuParams, gpuLight, cameraPosition, position, tangent, shadowStaging, volumeStaging)

				for axis := 0; axis < 3; axis++ {
					if d := relativeDiff(got[axis], want[axis]); d > 1e-5 {
						t.Fatalf("mode %v segment %d u=%v axis %d: reference %v, evaluator %v (relative diff %v)",
							mode, seg, u, axis, got[axis], want[axis], d)
					}
				}
			}
		}
	}
}

func TestReferenceShadeGrazingAndAlignedStrands(t *testing.T) {
	white := light.GPULight{
		PositionType:   [4]float32{0, 0, 0, 0},
		ColorIntensity: [4]float32{1, 1, 1, 1},
	}
	material := shading.DefaultHairMaterial()
	params := shading.GPUShadingParams{
		Diffuse:  [4]float32{material.Diffuse.X(), material.Diffuse.Y(), material.Diffuse.Z(), material.Exponent},
		Specular: [4]float32{material.Specular.X(), material.Specular.Y(), material.Specular.Z(), 0},
	}

	// Light along the strand tangent: no diffuse wrap, no highlight.
	white.Direction = [4]float32{0, -1, 0, 0} // light direction toward the scene, so L = +Y
	got := ReferenceShade(params, white, mgl32.Vec3{0, 0, 2}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0},
		common.TextureStagingData{}, common.TextureStagingData{})
	if got.Len() > 1e-6 {
		t.Fatalf("tangent-aligned light should shade black, got %v", got)
	}

	// Light and eye both perpendicular to the strand: full diffuse plus the
	// full highlight.
	got = ReferenceShade(params, white, mgl32.Vec3{0, 2, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0},
		common.TextureStagingData{}, common.TextureStagingData{})
	want := material.Diffuse.Add(material.Specular)
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Fatalf("perpendicular light/eye: want %v, got %v", want, got)
	}
}

func TestValidateShadowStaging(t *testing.T) {
	valid := common.TextureStagingData{
		Texels:        make([]byte, 4*4*2*4),
		Width:         4,
		Height:        4,
		Depth:         2,
		Format:        common.DeepShadowMapFormat,
		BytesPerTexel: 4,
	}
	if err := validateShadowStaging(valid); err != nil {
		t.Fatalf("valid staging rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*common.TextureStagingData)
	}{
		{"empty texels", func(s *common.TextureStagingData) { s.Texels = nil }},
		{"wrong format", func(s *common.TextureStagingData) { s.Format = common.DensityVolumeFormat }},
		{"wrong stride", func(s *common.TextureStagingData) { s.BytesPerTexel = 1 }},
		{"no layers", func(s *common.TextureStagingData) { s.Depth = 0 }},
		{"size mismatch", func(s *common.TextureStagingData) { s.Width = 8 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			staging := valid
			tc.mutate(&staging)
			err := validateShadowStaging(staging)
			var bindErr *ResourceBindingError
			if !errors.As(err, &bindErr) {
				t.Fatalf("want *ResourceBindingError, got %v", err)
			}
			if bindErr.Resource != "deep shadow map" {
				t.Fatalf("want deep shadow map resource, got %q", bindErr.Resource)
			}
		})
	}
}

func TestValidateVolumeStaging(t *testing.T) {
	valid := common.TextureStagingData{
		Texels:        make([]byte, 8*8*8),
		Width:         8,
		Height:        8,
		Depth:         8,
		Format:        common.DensityVolumeFormat,
		BytesPerTexel: 1,
	}
	if err := validateVolumeStaging(valid); err != nil {
		t.Fatalf("valid staging rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*common.TextureStagingData)
	}{
		{"empty texels", func(s *common.TextureStagingData) { s.Texels = nil }},
		{"wrong format", func(s *common.TextureStagingData) { s.Format = common.DeepShadowMapFormat }},
		{"wrong stride", func(s *common.TextureStagingData) { s.BytesPerTexel = 4 }},
		{"size mismatch", func(s *common.TextureStagingData) { s.Depth = 4 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			staging := valid
			tc.mutate(&staging)
			err := validateVolumeStaging(staging)
			var bindErr *ResourceBindingError
			if !errors.As(err, &bindErr) {
				t.Fatalf("want *ResourceBindingError, got %v", err)
			}
			if bindErr.Resource != "density volume" {
				t.Fatalf("want density volume resource, got %q", bindErr.Resource)
			}
		})
	}
}

func TestStagingRoundTripsThroughReference(t *testing.T) {
	_, _, m, v := buildShadedScene(t)

	// A staged shadow texel must decode to the exact float DensityAt reads.
	x, y, depth, ok := m.Project(mgl32.Vec3{0, 0.1, 0})
	if !ok {
		t.Fatalf("scene center should project into the shadow map")
	}
	staging := m.Staging()
	layerCount := int(staging.Depth)
	layer := int(common.Clamp(depth, 0, 1) * float32(layerCount))
	if layer > layerCount-1 {
		layer = layerCount - 1
	}
	got := shadowTexel(staging, int(x), int(y), layer)
	want := m.DensityAt(int(x), int(y), depth)
	if got != want {
		t.Fatalf("staged shadow texel %v, DensityAt %v", got, want)
	}

	// Same contract for the volume: staged bytes decode to Sample's value.
	gpuParams := shading.BuildGPUShadingParams(shading.DefaultHairMaterial(), shading.NewParams(), shading.ModeCombined, v)
	probe := mgl32.Vec3{0, 0.5, 0}
	if got, want := densityTexel(gpuParams, probe, v.Staging()), v.Sample(probe); got != want {
		t.Fatalf("staged density texel %v, Sample %v", got, want)
	}
}
