package renderer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/strandworks/strand-go/common"
	"github.com/strandworks/strand-go/engine/camera"
	"github.com/strandworks/strand-go/engine/hair"
	"github.com/strandworks/strand-go/engine/light"
	"github.com/strandworks/strand-go/engine/raster"
	"github.com/strandworks/strand-go/engine/raytracer"
	"github.com/strandworks/strand-go/engine/shading"
)

// recordingBackend is a raster.Backend double that records the call sequence
// so frame orchestration can be tested without a GPU device.
type recordingBackend struct {
	calls []string

	shadowUploads int
	volumeUploads int
	volumeTexels  [][]byte
	blitBytes     int

	drawErr error
}

var _ raster.Backend = &recordingBackend{}

func (b *recordingBackend) Device() *wgpu.Device     { return nil }
func (b *recordingBackend) Queue() *wgpu.Queue       { return nil }
func (b *recordingBackend) Instance() *wgpu.Instance { return nil }
func (b *recordingBackend) Adapter() *wgpu.Adapter   { return nil }
func (b *recordingBackend) Surface() *wgpu.Surface   { return nil }

func (b *recordingBackend) ConfigureSurface(width, height int) {
	b.calls = append(b.calls, "configure")
}

func (b *recordingBackend) Attach(g *hair.Geometry) error {
	b.calls = append(b.calls, "attach")
	return nil
}

func (b *recordingBackend) UploadCamera(camera.GPUCameraUniform) {
	b.calls = append(b.calls, "camera")
}

func (b *recordingBackend) UploadLight(light.GPULight) {
	b.calls = append(b.calls, "light")
}

func (b *recordingBackend) UploadShadingParams(shading.GPUShadingParams) {
	b.calls = append(b.calls, "params")
}

func (b *recordingBackend) UploadShadowMap(staging common.TextureStagingData) error {
	b.calls = append(b.calls, "shadow")
	b.shadowUploads++
	return nil
}

func (b *recordingBackend) UploadDensityVolume(staging common.TextureStagingData) error {
	b.calls = append(b.calls, "volume")
	b.volumeUploads++
	// The staging slice aliases the volume's live voxels; copy so later
	// rebuilds can be compared against this upload.
	b.volumeTexels = append(b.volumeTexels, append([]byte(nil), staging.Texels...))
	return nil
}

func (b *recordingBackend) BeginFrame() error {
	b.calls = append(b.calls, "begin")
	return nil
}

func (b *recordingBackend) DrawHair(model mgl32.Mat4) error {
	b.calls = append(b.calls, "draw")
	return b.drawErr
}

func (b *recordingBackend) Blit(pixels []byte, width, height uint32) error {
	b.calls = append(b.calls, "blit")
	b.blitBytes = len(pixels)
	return nil
}

func (b *recordingBackend) EndFrame() { b.calls = append(b.calls, "end") }
func (b *recordingBackend) Present()  { b.calls = append(b.calls, "present") }
func (b *recordingBackend) Release()  { b.calls = append(b.calls, "release") }

func (b *recordingBackend) count(name string) int {
	n := 0
	for _, c := range b.calls {
		if c == name {
			n++
		}
	}
	return n
}

func testStyle() hair.HairStyle {
	var strands []hair.Strand
	for i := 0; i < 8; i++ {
		x := float32(i) * 0.05
		strands = append(strands, hair.Strand{
			Points: []mgl32.Vec3{{x, 0, 0}, {x, 0.5, 0.02}, {x, 1, 0}},
		})
	}
	return hair.NewHairStyle("test", hair.WithStrands(strands))
}

func newTestRenderer(backend raster.Backend) Renderer {
	return NewRenderer(backend,
		WithShadowMap(light.NewDeepShadowMap(light.WithShadowMapResolution(32), light.WithShadowMapLayers(4))),
		WithRaytracer(raytracer.NewRaytracer(raytracer.WithWorkers(1))),
	)
}

func TestRenderFrameRequiresAttachAndResize(t *testing.T) {
	backend := &recordingBackend{}
	r := newTestRenderer(backend)
	cam := camera.NewCamera()

	if err := r.RenderFrame(cam); err == nil {
		t.Fatalf("frame without geometry should fail")
	}
	if err := r.Attach(testStyle()); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := r.RenderFrame(cam); err == nil {
		t.Fatalf("frame without a sized surface should fail")
	}
	r.Resize(16, 16)
	if err := r.RenderFrame(cam); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
}

func TestOcclusionFrozenBetweenInvalidations(t *testing.T) {
	backend := &recordingBackend{}
	r := newTestRenderer(backend)
	if err := r.Attach(testStyle()); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	r.Resize(16, 16)
	cam := camera.NewCamera()

	for i := 0; i < 3; i++ {
		if err := r.RenderFrame(cam); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if backend.shadowUploads != 1 || backend.volumeUploads != 1 {
		t.Fatalf("occlusion should build once across frozen frames, got shadow=%d volume=%d",
			backend.shadowUploads, backend.volumeUploads)
	}

	r.InvalidateOcclusion()
	if err := r.RenderFrame(cam); err != nil {
		t.Fatalf("RenderFrame after invalidation: %v", err)
	}
	if backend.shadowUploads != 2 || backend.volumeUploads != 2 {
		t.Fatalf("invalidation should trigger exactly one rebuild, got shadow=%d volume=%d",
			backend.shadowUploads, backend.volumeUploads)
	}
}

func TestInvalidatedRebuildsAreFromScratch(t *testing.T) {
	backend := &recordingBackend{}
	r := newTestRenderer(backend)
	if err := r.Attach(testStyle()); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	r.Resize(16, 16)
	cam := camera.NewCamera()

	// Unchanged geometry rebuilt across invalidations must stage the same
	// voxels every time; accumulating over the previous build would darken
	// ambient occlusion a little more each frame.
	for i := 0; i < 4; i++ {
		if err := r.RenderFrame(cam); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		r.InvalidateOcclusion()
	}
	if len(backend.volumeTexels) != 4 {
		t.Fatalf("expected 4 volume uploads, got %d", len(backend.volumeTexels))
	}
	first := backend.volumeTexels[0]
	for i, texels := range backend.volumeTexels[1:] {
		if !bytes.Equal(first, texels) {
			t.Fatalf("volume upload %d differs from the first for identical geometry", i+2)
		}
	}
}

func TestRasterizerFrameSequence(t *testing.T) {
	backend := &recordingBackend{}
	r := newTestRenderer(backend)
	if err := r.Attach(testStyle()); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	r.Resize(16, 16)
	backend.calls = nil

	if err := r.RenderFrame(camera.NewCamera()); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	want := []string{"shadow", "volume", "begin", "camera", "light", "params", "draw", "end", "present"}
	if len(backend.calls) != len(want) {
		t.Fatalf("call sequence %v, want %v", backend.calls, want)
	}
	for i, name := range want {
		if backend.calls[i] != name {
			t.Fatalf("call %d = %q, want %q (full sequence %v)", i, backend.calls[i], name, backend.calls)
		}
	}
}

func TestRaytracerFrameBlits(t *testing.T) {
	backend := &recordingBackend{}
	r := newTestRenderer(backend)
	if err := r.Attach(testStyle()); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	r.Resize(16, 16)
	r.SetBackend(BackendRaytracer)

	cam := camera.NewCamera(
		camera.WithPosition(mgl32.Vec3{0.2, 0.5, 3}),
		camera.WithTarget(mgl32.Vec3{0.2, 0.5, 0}),
	)
	if err := r.RenderFrame(cam); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	if backend.count("blit") != 1 || backend.count("draw") != 0 {
		t.Fatalf("raytracer frame should blit, not draw: %v", backend.calls)
	}
	if backend.blitBytes != 16*16*4 {
		t.Fatalf("blit bytes %d, want %d", backend.blitBytes, 16*16*4)
	}
}

func TestBindingFailureSkipsFrameButPresents(t *testing.T) {
	backend := &recordingBackend{drawErr: &raster.ResourceBindingError{Resource: "deep shadow map", Reason: "not uploaded"}}
	r := newTestRenderer(backend)
	if err := r.Attach(testStyle()); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	r.Resize(16, 16)

	err := r.RenderFrame(camera.NewCamera())
	var bindErr *raster.ResourceBindingError
	if !errors.As(err, &bindErr) {
		t.Fatalf("want *raster.ResourceBindingError, got %v", err)
	}
	if backend.count("end") != 1 || backend.count("present") != 1 {
		t.Fatalf("a skipped frame must still end its pass and present: %v", backend.calls)
	}
}

func TestBackendToggleAndMode(t *testing.T) {
	r := newTestRenderer(&recordingBackend{})

	if r.Backend() != BackendRasterizer {
		t.Fatalf("default backend should be the rasterizer")
	}
	if got := r.ToggleBackend(); got != BackendRaytracer {
		t.Fatalf("toggle should switch to the raytracer, got %v", got)
	}
	if got := r.ToggleBackend(); got != BackendRasterizer {
		t.Fatalf("toggle should switch back, got %v", got)
	}

	if err := r.SetMode(shading.ModeAmbientOcclusionOnly); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if r.Mode() != shading.ModeAmbientOcclusionOnly {
		t.Fatalf("mode not applied")
	}
	if err := r.SetMode(shading.Mode(99)); err == nil {
		t.Fatalf("invalid mode should be rejected")
	}
}
