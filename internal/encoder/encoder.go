package encoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ritikZ18/screen-recoder-da/internal/stats"
	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// ErrDimensionsChanged is returned when a frame does not match the size the
// output was opened with. Containers are opened once per recording.
var ErrDimensionsChanged = errors.New("encoder: frame dimensions changed mid-recording")

// ErrFinalized is returned by Encode after Finalize.
var ErrFinalized = errors.New("encoder: already finalized")

// Backend writes raw RGB24 frames into an output file.
//
// Open is called once, with the dimensions of the first frame. Write is
// called from a single goroutine. Close flushes and closes the output; it
// is only called if Open succeeded.
type Backend interface {
	Open(width, height int) error
	Write(frame *types.Frame) error
	Close() error
	// Name identifies the backend in logs
	Name() string
}

// Encoder feeds frames to a Backend and tracks rate, drop and latency
// statistics for every frame it writes.
type Encoder struct {
	outputPath string
	backend    Backend
	tracker    *stats.Tracker
	now        func() time.Time

	mu        sync.Mutex
	width     int
	height    int
	opened    bool
	finalized bool
}

// New creates an encoder writing to outputPath through backend.
func New(outputPath string, backend Backend) *Encoder {
	return &Encoder{
		outputPath: outputPath,
		backend:    backend,
		tracker:    stats.NewTracker(),
		now:        time.Now,
	}
}

// OutputPath returns the media file path.
func (e *Encoder) OutputPath() string { return e.outputPath }

// Encode writes one frame. Any returned error is fatal for the recording.
//
// The output is opened lazily with the first frame's dimensions.
func (e *Encoder) Encode(ctx context.Context, frame *types.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finalized {
		return ErrFinalized
	}

	if !e.opened {
		if frame.Width <= 0 || frame.Height <= 0 {
			return fmt.Errorf("encoder: invalid first frame size %dx%d", frame.Width, frame.Height)
		}
		if err := e.backend.Open(frame.Width, frame.Height); err != nil {
			return fmt.Errorf("encoder: failed to open %s output: %w", e.backend.Name(), err)
		}
		e.width, e.height = frame.Width, frame.Height
		e.opened = true
		slog.Info("encoder: configured",
			"backend", e.backend.Name(),
			"output", e.outputPath,
			"resolution", fmt.Sprintf("%dx%d", e.width, e.height),
		)
	} else if frame.Width != e.width || frame.Height != e.height {
		return fmt.Errorf("%w: %dx%d, opened as %dx%d",
			ErrDimensionsChanged, frame.Width, frame.Height, e.width, e.height)
	}

	if err := e.backend.Write(frame); err != nil {
		return fmt.Errorf("encoder: write frame %d: %w", frame.Seq, err)
	}

	// only written frames count, so latency and frame totals stay paired
	e.tracker.Observe(start)
	e.tracker.ObserveLatency(e.now().Sub(start))
	return nil
}

// Metrics returns rate, drop and latency statistics.
func (e *Encoder) Metrics() types.EncoderMetrics {
	return e.tracker.Metrics()
}

// Rebase stops the next arrival gap from counting as dropped frames.
// Called when a paused recording resumes.
func (e *Encoder) Rebase() {
	e.tracker.Rebase()
}

// Arrivals returns the recent frame arrival instants, oldest first.
func (e *Encoder) Arrivals() []time.Time { return e.tracker.Arrivals() }

// Finalize flushes and closes the output. Safe to call more than once.
func (e *Encoder) Finalize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finalized {
		return nil
	}
	e.finalized = true

	m := e.tracker.Metrics()
	if !e.opened {
		slog.Warn("encoder: finalized without frames", "output", e.outputPath)
		return nil
	}

	if err := e.backend.Close(); err != nil {
		return fmt.Errorf("encoder: failed to finalize %s output: %w", e.backend.Name(), err)
	}

	slog.Info("encoder: finalized",
		"output", e.outputPath,
		"frames_encoded", m.FramesEncoded,
		"dropped_frames", m.DroppedFrames,
		"avg_latency_ms", m.EncodeLatencyMS,
	)
	return nil
}
