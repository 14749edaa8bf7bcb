package analytics

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// SceneChangeRatio is the fraction of pixels whose luma histogram mass must
// move between consecutive frames for the frame to count as a scene change.
const SceneChangeRatio = 0.1

// Engine derives per-frame visual analytics and keeps a bounded timeline.
//
// Process is called from a single goroutine (the capture loop). Snapshot and
// SaveMetadata may be called concurrently with Process.
type Engine struct {
	start time.Time

	mu       sync.RWMutex
	timeline *Timeline

	// Previous frame state, touched only by Process
	prev           []byte
	prevHist       Histogram
	prevBrightness float64
	hasPrev        bool
	processed      uint64
}

// NewEngine creates an engine whose timeline times are seconds since start.
func NewEngine(start time.Time) *Engine {
	return NewEngineWithCapacity(start, DefaultTimelineCapacity)
}

// NewEngineWithCapacity creates an engine with a custom timeline capacity.
func NewEngineWithCapacity(start time.Time, capacity int) *Engine {
	return &Engine{
		start:    start,
		timeline: NewTimeline(capacity),
	}
}

// Process analyzes one frame and appends its timeline entry.
//
// The frame buffer is copied for diffing against the next frame; the caller
// keeps ownership of frame.Data.
func (e *Engine) Process(frame *types.Frame) types.TimelineEntry {
	pixels := frame.Pixels()
	hist, sum := lumaStats(frame.Data, pixels)

	var dominance, brightness float64
	if pixels > 0 {
		dominance = float64(hist.Dominant()) / 255.0
		brightness = float64(sum) / (float64(pixels) * 255.0)
	}

	var sceneChange bool
	var activity float64
	if e.hasPrev {
		sceneChange = float64(hist.Distance(&e.prevHist)) > SceneChangeRatio*float64(pixels)
		activity = math.Min(math.Abs(brightness-e.prevBrightness), 1.0)
	}

	entry := types.TimelineEntry{
		Time:           frame.Timestamp.Sub(e.start).Seconds(),
		ColorDominance: dominance,
		Brightness:     brightness,
		AudioLevel:     activity,
		SceneChange:    sceneChange,
	}

	e.mu.Lock()
	e.timeline.Push(entry)
	e.mu.Unlock()

	e.retain(frame.Data[:pixels*types.BytesPerPixel])
	e.prevHist = hist
	e.prevBrightness = brightness
	e.hasPrev = true
	e.processed++

	if sceneChange {
		slog.Debug("analytics: scene change",
			"seq", frame.Seq,
			"time", entry.Time,
			"brightness", brightness,
		)
	}

	return entry
}

// retain keeps a private copy of the frame buffer, reusing the previous
// allocation when it is large enough.
func (e *Engine) retain(data []byte) {
	if cap(e.prev) < len(data) {
		e.prev = make([]byte, len(data))
	}
	e.prev = e.prev[:len(data)]
	copy(e.prev, data)
}

// Snapshot returns the timeline, oldest first.
func (e *Engine) Snapshot() []types.TimelineEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.timeline.Snapshot()
}

// Len returns the number of timeline entries held.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.timeline.Len()
}

// Processed returns the number of frames analyzed, including evicted ones.
// Only meaningful from the goroutine calling Process, or after it stopped.
func (e *Engine) Processed() uint64 {
	return e.processed
}
