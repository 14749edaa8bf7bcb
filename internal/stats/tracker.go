package stats

import (
	"sync"
	"time"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

const (
	// DefaultWindow is the number of arrival instants kept for FPS
	DefaultWindow = 60

	// NominalFPS is the rate used to decide whether a gap hides dropped frames
	NominalFPS = 30
)

// Tracker derives capture FPS, a dropped-frame estimate and average
// processing latency from frame arrival instants.
//
// Safe for concurrent use: the capture loop observes, other goroutines
// read Metrics.
type Tracker struct {
	window   int
	interval time.Duration

	mu       sync.Mutex
	arrivals []time.Time // oldest first, at most window entries
	last     time.Time
	hasLast  bool
	frames   uint64
	dropped  uint64
	latency  time.Duration
}

// NewTracker creates a tracker with the default window and a 30 FPS
// nominal interval.
func NewTracker() *Tracker {
	return NewTrackerWithWindow(DefaultWindow, NominalFPS)
}

// NewTrackerWithWindow creates a tracker keeping window arrivals and
// estimating drops against nominalFPS.
func NewTrackerWithWindow(window int, nominalFPS float64) *Tracker {
	if window < 2 {
		window = DefaultWindow
	}
	if nominalFPS <= 0 {
		nominalFPS = NominalFPS
	}
	return &Tracker{
		window:   window,
		interval: time.Duration(float64(time.Second) / nominalFPS),
		arrivals: make([]time.Time, 0, window),
	}
}

// Observe records a frame arrival and returns the drops it implied.
//
// A gap longer than two nominal intervals since the previous arrival adds
// floor(gap/interval - 1) to the dropped counter, which never decreases.
func (t *Tracker) Observe(at time.Time) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var dropped uint64
	if t.hasLast {
		gap := at.Sub(t.last)
		if gap > 2*t.interval {
			dropped = uint64(float64(gap)/float64(t.interval) - 1)
			t.dropped += dropped
		}
	}

	if len(t.arrivals) == t.window {
		copy(t.arrivals, t.arrivals[1:])
		t.arrivals = t.arrivals[:t.window-1]
	}
	t.arrivals = append(t.arrivals, at)
	t.last = at
	t.hasLast = true
	t.frames++

	return dropped
}

// ObserveLatency adds the processing time of one frame.
func (t *Tracker) ObserveLatency(d time.Duration) {
	t.mu.Lock()
	t.latency += d
	t.mu.Unlock()
}

// Rebase forgets the previous arrival so that the next gap is not counted
// as drops. Used after a pause. FPS history is cleared as well.
func (t *Tracker) Rebase() {
	t.mu.Lock()
	t.hasLast = false
	t.arrivals = t.arrivals[:0]
	t.mu.Unlock()
}

// CaptureFPS returns (n-1)/span over the retained arrivals, 0 with fewer
// than two samples or a zero span.
func (t *Tracker) CaptureFPS() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.captureFPSLocked()
}

func (t *Tracker) captureFPSLocked() float64 {
	n := len(t.arrivals)
	if n < 2 {
		return 0
	}
	span := t.arrivals[n-1].Sub(t.arrivals[0]).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(n-1) / span
}

// Dropped returns the cumulative dropped-frame estimate.
func (t *Tracker) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Arrivals returns a copy of the retained arrival instants, oldest first.
func (t *Tracker) Arrivals() []time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]time.Time, len(t.arrivals))
	copy(out, t.arrivals)
	return out
}

// Metrics returns the current figures.
// EncodeFPS is 1000 / average latency in ms, 0 when no latency was observed.
func (t *Tracker) Metrics() types.EncoderMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	var avgMS float64
	if t.frames > 0 {
		avgMS = float64(t.latency) / float64(time.Millisecond) / float64(t.frames)
	}

	var encodeFPS float64
	if avgMS > 0 {
		encodeFPS = 1000.0 / avgMS
	}

	return types.EncoderMetrics{
		FramesEncoded:   t.frames,
		CaptureFPS:      t.captureFPSLocked(),
		EncodeFPS:       encodeFPS,
		DroppedFrames:   t.dropped,
		EncodeLatencyMS: avgMS,
	}
}
