// Package profiler reports frame rate and memory statistics at a fixed
// interval, for judging the cost of shader and pipeline changes at runtime.
package profiler

import (
	"runtime"
	"time"

	"github.com/charmbracelet/log"
)

// Profiler accumulates frame timings and logs a summary line once per
// interval. Not safe for concurrent use; call Tick from the frame loop only.
type Profiler struct {
	logger   *log.Logger
	interval time.Duration

	frames    int
	worst     time.Duration
	lastFrame time.Time
	lastFlush time.Time

	memStats       runtime.MemStats
	lastTotalAlloc uint64
}

// New creates a profiler reporting once per second to the default logger.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the profiler
func New(options ...ProfilerOption) *Profiler {
	now := time.Now()
	p := &Profiler{
		logger:    log.Default(),
		interval:  time.Second,
		lastFrame: now,
		lastFlush: now,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// ProfilerOption is a functional option used to configure a Profiler during construction.
type ProfilerOption func(*Profiler)

// WithInterval sets how often the summary line is logged.
//
// Parameters:
//   - interval: the reporting interval
//
// Returns:
//   - ProfilerOption: a function that sets the interval
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithProfilerLogger sets the logger the summary is written to.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - ProfilerOption: a function that sets the logger
func WithProfilerLogger(logger *log.Logger) ProfilerOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Tick records one frame and logs the summary when the interval has elapsed.
//
// Returns:
//   - bool: true when a summary was logged this tick
func (p *Profiler) Tick() bool {
	now := time.Now()
	frameTime := now.Sub(p.lastFrame)
	p.lastFrame = now
	p.frames++
	if frameTime > p.worst {
		p.worst = frameTime
	}

	elapsed := now.Sub(p.lastFlush)
	if elapsed < p.interval {
		return false
	}

	fps := float64(p.frames) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	heapMB := float64(p.memStats.Alloc) / 1024 / 1024
	churn := p.memStats.TotalAlloc - p.lastTotalAlloc
	churnMB := float64(churn) / 1024 / 1024 / elapsed.Seconds()

	p.logger.Info("frame stats",
		"fps", round2(fps),
		"worst_ms", round2(float64(p.worst.Microseconds())/1000),
		"heap_mb", round2(heapMB),
		"alloc_mb_s", round2(churnMB),
		"gc", p.memStats.NumGC,
	)

	p.frames = 0
	p.worst = 0
	p.lastFlush = now
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
