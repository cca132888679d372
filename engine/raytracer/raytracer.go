package raytracer

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/strandworks/strand-go/engine/camera"
	"github.com/strandworks/strand-go/engine/hair"
	"github.com/strandworks/strand-go/engine/light"
	"github.com/strandworks/strand-go/engine/shading"
)

// BackendMismatch reports a programming error: the ray tracer was asked to
// render before geometry was attached, so the shading inputs and the
// intersection structures cannot refer to the same strands. This is a
// sequencing bug in the caller, not a runtime condition, so it panics rather
// than returning an error.
type BackendMismatch struct {
	// Op names the operation that found the tracer in an unusable state.
	Op string
}

// Error implements the error interface.
//
// Returns:
//   - string: a formatted error message
func (e BackendMismatch) Error() string {
	return fmt.Sprintf("raytracer: %s: no geometry attached", e.Op)
}

type raytracerImpl struct {
	mu *sync.Mutex

	geometry *hair.Geometry
	tree     *bvh

	pool     worker.DynamicWorkerPool
	workers  int
	tileSize int

	background mgl32.Vec3
}

// Raytracer renders strand geometry on the CPU by intersecting camera rays
// against segment capsules, shading hits through the same per-frame evaluator
// the rasterizer's fragment stage mirrors. The output framebuffer is blitted
// through the rasterization backend's swapchain.
type Raytracer interface {
	// Attach registers the strand geometry and builds the acceleration
	// structure over its segments. Calling again replaces the previous
	// geometry.
	//
	// Parameters:
	//   - g: the built strand geometry
	//
	// Returns:
	//   - error: an error if the geometry has no segments
	Attach(g *hair.Geometry) error

	// Render traces one frame into the framebuffer: a primary ray per pixel,
	// closest capsule hit, evaluator shading at the hit point, background
	// color on miss. Tiles are traced in parallel on the worker pool; the
	// call returns when every tile is done.
	//
	// Panics with BackendMismatch if no geometry is attached.
	//
	// Parameters:
	//   - fb: the framebuffer to write
	//   - cam: the camera generating primary rays
	//   - l: the frame's light, queried per hit for the incident direction
	//   - evaluator: the frozen per-frame shading evaluator
	Render(fb *Framebuffer, cam camera.Camera, l light.Light, evaluator shading.Evaluator)
}

var _ Raytracer = &raytracerImpl{}

// NewRaytracer creates a Raytracer with the provided options applied. The
// worker pool is sized to the machine by default and reused across frames.
//
// Parameters:
//   - options: a variadic list of RaytracerOption functions to configure the tracer
//
// Returns:
//   - Raytracer: a new Raytracer instance
func NewRaytracer(options ...RaytracerOption) Raytracer {
	r := &raytracerImpl{
		mu:         &sync.Mutex{},
		workers:    max(runtime.NumCPU()-1, 1),
		tileSize:   32,
		background: mgl32.Vec3{0.02, 0.02, 0.02},
	}
	for _, opt := range options {
		opt(r)
	}
	// Queue size of 256 accommodates typical tile counts with headroom.
	r.pool = worker.NewDynamicWorkerPool(r.workers, 256, 1*time.Second)
	return r
}

func (r *raytracerImpl) Attach(g *hair.Geometry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g == nil || g.SegmentCount() == 0 {
		return fmt.Errorf("raytracer: geometry has no segments")
	}
	r.geometry = g
	r.tree = buildBVH(g)
	return nil
}

func (r *raytracerImpl) Render(fb *Framebuffer, cam camera.Camera, l light.Light, evaluator shading.Evaluator) {
	r.mu.Lock()
	g := r.geometry
	tree := r.tree
	tileSize := r.tileSize
	background := r.background
	r.mu.Unlock()

	if g == nil || tree == nil {
		panic(BackendMismatch{Op: "Render"})
	}

	width := fb.Width()
	height := fb.Height()
	eye := cam.Position()

	// Per-frame barrier sync with a WaitGroup; pool.Wait() blocks until
	// workers idle-exit, which is unsuitable for frame-rate workloads.
	var wg sync.WaitGroup
	taskID := 0
	for tileY := 0; tileY < height; tileY += tileSize {
		for tileX := 0; tileX < width; tileX += tileSize {
			x0, y0 := tileX, tileY
			x1 := min(tileX+tileSize, width)
			y1 := min(tileY+tileSize, height)

			wg.Add(1)
			id := taskID
			taskID++
			r.pool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					defer wg.Done()
					for py := y0; py < y1; py++ {
						for px := x0; px < x1; px++ {
							origin, dir := cam.PrimaryRay(px, py, width, height)
							hit, ok := tree.intersect(g, origin, dir)
							if !ok {
								fb.SetPixel(px, py, background)
								continue
							}
							position := origin.Add(dir.Mul(hit.t))
							fb.SetPixel(px, py, evaluator.Shade(shading.Context{
								Position: position,
								Tangent:  g.SegmentTangent(hit.segment, hit.u),
								EyeDir:   eye.Sub(position).Normalize(),
								LightDir: l.VectorTo(position),
							}))
						}
					}
					return nil, nil
				},
			})
		}
	}
	wg.Wait()
}
