package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"go.uber.org/zap"
)

// DefaultInterval is the time between two statistics reports.
const DefaultInterval = time.Second

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to a zap logger at a configurable interval. When a backend is attached the
// first report also carries the driver strings and every report carries the last API error.
type Profiler struct {
	logger         *zap.Logger
	backend        backend.Backend
	now            func() time.Time
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	reported       bool
	lastFPS        float64
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(p *Profiler)

// WithLogger sets the logger the statistics are written to. A nil logger is ignored.
//
// Parameters:
//   - logger: the destination logger
//
// Returns:
//   - ProfilerOption: option function to apply
func WithLogger(logger *zap.Logger) ProfilerOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithBackend attaches the graphics backend whose info and error state are reported.
//
// Parameters:
//   - b: the backend
//
// Returns:
//   - ProfilerOption: option function to apply
func WithBackend(b backend.Backend) ProfilerOption {
	return func(p *Profiler) {
		p.backend = b
	}
}

// WithInterval sets the time between two reports. Values <= 0 keep the default.
//
// Parameters:
//   - interval: the report interval
//
// Returns:
//   - ProfilerOption: option function to apply
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// withClock replaces the time source.
func withClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
		p.lastTime = now()
	}
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second and the logger to a no-op logger.
//
// Parameters:
//   - options: functional options for the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		logger:         zap.NewNop(),
		now:            time.Now,
		lastTime:       time.Now(),
		updateInterval: DefaultInterval,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	if !p.reported && p.backend != nil {
		info := p.backend.Info()
		p.logger.Debug("graphics backend",
			zap.String("renderer", info.Renderer),
			zap.String("vendor", info.Vendor),
			zap.String("version", info.Version),
			zap.String("glsl", info.GLSL),
		)
	}
	p.reported = true

	fps := float64(p.frameCount) / elapsed.Seconds()
	p.lastFPS = fps

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	fields := []zap.Field{
		zap.Float64("fps", fps),
		zap.Float64("heap_mb", allocMB),
		zap.Float64("alloc_rate_mb_s", allocRateMB),
		zap.Uint32("gc", gcCount),
		zap.Uint64("gc_last_us", lastPauseUs),
		zap.Uint64("gc_max_us", maxPauseUs),
		zap.Float64("sys_mb", sysMB),
	}
	if p.backend != nil {
		if code := p.backend.LastError(); code != 0 {
			fields = append(fields, zap.Uint32("gl_error", code))
		}
	}
	p.logger.Debug("frame stats", fields...)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// FPS returns the frame rate measured by the last report, 0 before the first one.
func (p *Profiler) FPS() float64 {
	return p.lastFPS
}
