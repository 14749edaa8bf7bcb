//go:build gst

package gstcapture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/ritikZ18/screen-recoder-da/internal/capture"
	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// ErrorCounters holds per-category bus error counts
type ErrorCounters struct {
	Permission  uint64
	Target      uint64
	Negotiation uint64
	Unknown     uint64
}

func (c *ErrorCounters) add(cat ErrorCategory) {
	switch cat {
	case ErrCategoryPermission:
		atomic.AddUint64(&c.Permission, 1)
	case ErrCategoryTarget:
		atomic.AddUint64(&c.Target, 1)
	case ErrCategoryNegotiation:
		atomic.AddUint64(&c.Negotiation, 1)
	default:
		atomic.AddUint64(&c.Unknown, 1)
	}
}

// Source captures a monitor or window through a GStreamer pipeline.
// The appsink callback publishes into a latest-wins mailbox which
// CaptureFrame drains without blocking. After EOS or a bus error the
// pipeline is rebuilt with backoff.
type Source struct {
	cfg      capture.Config
	target   types.SourceSelector
	restarts *capture.Restarter

	mu          sync.Mutex
	initialized bool
	elements    *PipelineElements
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	busErr      error
	startedAt   time.Time

	box    capture.Mailbox
	seq    uint64
	bytes  uint64
	errors ErrorCounters
}

// NewSource creates a GStreamer-backed source for target.
func NewSource(target types.SourceSelector, cfg capture.Config) *Source {
	cfg = cfg.WithDefaults()
	return &Source{cfg: cfg, target: target, restarts: capture.NewRestarter(cfg.Restart)}
}

func (s *Source) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return fmt.Errorf("gstcapture: source already initialized")
	}
	if err := s.startLocked(); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// startLocked builds the pipeline, sets it playing and starts the bus
// monitor. Callers hold s.mu.
func (s *Source) startLocked() error {
	elements, err := CreatePipeline(PipelineConfig{
		Target: s.target,
		Width:  s.cfg.Width,
		Height: s.cfg.Height,
		FPS:    s.cfg.FPS,
	})
	if err != nil {
		return fmt.Errorf("gstcapture: %w", err)
	}

	elements.AppSink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: s.onNewSample,
	})

	if err := elements.Pipeline.SetState(gst.StatePlaying); err != nil {
		_ = DestroyPipeline(elements)
		return fmt.Errorf("gstcapture: failed to start pipeline: %w", err)
	}

	monitorCtx, cancel := context.WithCancel(context.Background())
	s.elements = elements
	s.cancel = cancel
	s.busErr = nil
	s.startedAt = time.Now()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.monitorBus(monitorCtx, elements.Pipeline); err != nil {
			s.mu.Lock()
			s.busErr = err
			s.mu.Unlock()
		}
	}()

	slog.Info("gstcapture: pipeline playing",
		"target", s.target.String(),
		"resolution", fmt.Sprintf("%dx%d", s.cfg.Width, s.cfg.Height),
		"fps", s.cfg.FPS,
	)
	return nil
}

// onNewSample copies the mapped buffer since GStreamer reuses it.
func (s *Source) onNewSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		slog.Warn("gstcapture: failed to pull sample, skipping frame")
		return gst.FlowOK
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		slog.Warn("gstcapture: sample without buffer, skipping frame")
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) == 0 {
		buffer.Unmap()
		return gst.FlowOK
	}
	frameData := make([]byte, len(data))
	copy(frameData, data)
	buffer.Unmap()

	seq := atomic.AddUint64(&s.seq, 1)
	atomic.AddUint64(&s.bytes, uint64(len(frameData)))

	s.box.Put(&types.Frame{
		Seq:       seq,
		Timestamp: time.Now(),
		Width:     s.cfg.Width,
		Height:    s.cfg.Height,
		Data:      frameData,
		TraceID:   uuid.New().String(),
	})
	return gst.FlowOK
}

// monitorBus polls the pipeline bus until ctx is cancelled. EOS and errors
// end the capture and are reported through CaptureFrame.
func (s *Source) monitorBus(ctx context.Context, pipeline *gst.Pipeline) error {
	bus := pipeline.GetPipelineBus()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg := bus.TimedPop(50 * time.Millisecond)
		if msg == nil {
			continue
		}

		switch msg.Type() {
		case gst.MessageEOS:
			slog.Info("gstcapture: end of stream",
				"uptime", time.Since(s.startedAt),
				"frames", atomic.LoadUint64(&s.seq),
			)
			return capture.ErrSourceClosed

		case gst.MessageError:
			gerr := msg.ParseError()
			category := ClassifyError(gerr)
			s.errors.add(category)

			slog.Error("gstcapture: pipeline error",
				"error", gerr.Error(),
				"debug", gerr.DebugString(),
				"category", category.String(),
				"target", s.target.String(),
				"frames", atomic.LoadUint64(&s.seq),
			)
			return fmt.Errorf("gstcapture: pipeline error [%s]: %s", category, gerr.Error())

		case gst.MessageStateChanged:
			if msg.Source() == pipeline.GetName() {
				old, new := msg.ParseStateChanged()
				slog.Debug("gstcapture: pipeline state changed", "from", old, "to", new)
			}
		}
	}
}

func (s *Source) CaptureFrame(ctx context.Context) (*types.Frame, error) {
	s.mu.Lock()
	initialized := s.initialized
	busErr := s.busErr
	s.mu.Unlock()

	if !initialized {
		return nil, capture.ErrNotInitialized
	}
	if f := s.box.Take(); f != nil {
		s.restarts.Reset()
		return f, nil
	}
	if busErr == nil {
		return nil, nil
	}

	ran, err := s.restarts.Attempt(s.restart)
	switch {
	case errors.Is(err, capture.ErrRestartsExhausted):
		return nil, fmt.Errorf("%w: %w", busErr, err)
	case ran && err == nil:
		return nil, nil
	default:
		return nil, busErr
	}
}

// restart tears down the failed pipeline and builds a new one.
func (s *Source) restart() error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return capture.ErrNotInitialized
	}
	elements, cancel := s.elements, s.cancel
	s.elements = nil
	s.mu.Unlock()

	if elements != nil {
		s.teardown(elements, cancel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return capture.ErrNotInitialized
	}
	return s.startLocked()
}

func (s *Source) Stop() error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.initialized = false
	elements, cancel := s.elements, s.cancel
	s.elements = nil
	s.mu.Unlock()

	var err error
	if elements != nil {
		err = s.teardown(elements, cancel)
	}

	st := s.Stats()
	errs := s.ErrorCounts()
	slog.Info("gstcapture: pipeline stopped",
		"frames", st.FramesCaptured,
		"dropped", st.FramesDropped,
		"bytes", st.BytesRead,
		"restarts", st.Restarts,
		"errors_permission", errs.Permission,
		"errors_target", errs.Target,
		"errors_negotiation", errs.Negotiation,
		"errors_unknown", errs.Unknown,
	)
	return err
}

// teardown stops the bus monitor before destroying the pipeline it polls.
func (s *Source) teardown(elements *PipelineElements, cancel context.CancelFunc) error {
	cancel()
	s.wg.Wait()
	return DestroyPipeline(elements)
}

// Stats returns capture counters.
func (s *Source) Stats() capture.Stats {
	_, dropped := s.box.Stats()
	return capture.Stats{
		FramesCaptured: atomic.LoadUint64(&s.seq),
		FramesDropped:  dropped,
		BytesRead:      atomic.LoadUint64(&s.bytes),
		Restarts:       s.restarts.Restarts(),
	}
}

// ErrorCounts returns a copy of the bus error counters.
func (s *Source) ErrorCounts() ErrorCounters {
	return ErrorCounters{
		Permission:  atomic.LoadUint64(&s.errors.Permission),
		Target:      atomic.LoadUint64(&s.errors.Target),
		Negotiation: atomic.LoadUint64(&s.errors.Negotiation),
		Unknown:     atomic.LoadUint64(&s.errors.Unknown),
	}
}
