package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler tracks frame rate, frame-time, and memory statistics for the
// viewer loop. Frame times are attributed to the rendering backend that
// produced them, which is what makes the rasterizer/ray-tracer cost gap
// visible when toggling at runtime. Outputs stats to the log at a
// configurable interval.
type Profiler struct {
	frameCount     int
	frameTimeTotal time.Duration
	frameTimeMax   time.Duration
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// FrameDone records one completed frame and its render time. Logs
// accumulated statistics when the update interval has elapsed: FPS, average
// and worst frame time, heap usage, and GC count, tagged with the backend
// that rendered the interval.
//
// Parameters:
//   - backend: the name of the backend that rendered this frame
//   - frameTime: the time the frame took to render
//
// Returns:
//   - bool: true if stats were logged this frame, false otherwise
func (p *Profiler) FrameDone(backend string, frameTime time.Duration) bool {
	p.frameCount++
	p.frameTimeTotal += frameTime
	if frameTime > p.frameTimeMax {
		p.frameTimeMax = frameTime
	}

	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()
	avgMs := float64(p.frameTimeTotal.Microseconds()) / float64(p.frameCount) / 1000
	maxMs := float64(p.frameTimeMax.Microseconds()) / 1000

	runtime.ReadMemStats(&p.memStats)
	heapMB := float64(p.memStats.Alloc) / 1024 / 1024

	log.Printf("[Profiler] %s | FPS: %.2f | Frame: avg %.2f ms, max %.2f ms | Heap: %.2f MB | GC: %d",
		backend, fps, avgMs, maxMs, heapMB, p.memStats.NumGC)

	p.frameCount = 0
	p.frameTimeTotal = 0
	p.frameTimeMax = 0
	p.lastTime = now
	return true
}
