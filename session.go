package screenrecorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ritikZ18/screen-recoder-da/internal/analytics"
	"github.com/ritikZ18/screen-recoder-da/internal/stats"
	"github.com/ritikZ18/screen-recoder-da/internal/sysmetrics"
)

// Lifecycle event names passed to Observer.RecordEvent
const (
	EventStarted       = "recording_started"
	EventStopped       = "recording_stopped"
	EventPaused        = "recording_paused"
	EventResumed       = "recording_resumed"
	EventEncoderFailed = "encoder_failed"
)

// Options configures a Manager
type Options struct {
	// OutputDir receives recordings (default DefaultOutputDir())
	OutputDir string
	// Extension is the container extension of output files (default ".mp4")
	Extension string

	// NewCapture and NewEncoder are required
	NewCapture CaptureFactory
	NewEncoder EncoderFactory

	// Sampler defaults to a gopsutil process sampler
	Sampler SystemSampler
	// Observer and Catalog are optional
	Observer Observer
	Catalog  Catalog
}

// Manager owns the recording lifecycle. All methods are safe for concurrent use.
type Manager struct {
	opts Options
	now  func() time.Time

	state stateOwner

	// lifecycle serializes Start and Stop
	lifecycle sync.Mutex

	mu   sync.RWMutex
	sess *session
}

// session holds everything that lives exactly as long as one recording.
type session struct {
	id         string
	outputPath string
	source     string
	startedAt  time.Time

	capture CaptureSource
	encoder Encoder
	engine  *analytics.Engine
	sink    EventSink

	cancel context.CancelFunc
	done   chan struct{}

	frames atomic.Uint64

	mu      sync.Mutex
	metrics MetricsSnapshot
	failure error
}

func (s *session) setMetrics(m MetricsSnapshot) {
	s.mu.Lock()
	s.metrics = m
	s.mu.Unlock()
}

func (s *session) setFailure(err error) {
	s.mu.Lock()
	s.failure = err
	s.mu.Unlock()
}

func (s *session) snapshot() (MetricsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics, s.failure
}

// NewManager creates a manager. NewCapture and NewEncoder are required.
func NewManager(opts Options) (*Manager, error) {
	if opts.NewCapture == nil || opts.NewEncoder == nil {
		return nil, fmt.Errorf("screen-recorder: capture and encoder factories are required")
	}
	if opts.Extension == "" {
		opts.Extension = ".mp4"
	}
	if opts.Sampler == nil {
		opts.Sampler = sysmetrics.NewSampler()
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}

	m := &Manager{opts: opts, now: time.Now}
	m.state.now = func() time.Time { return m.now() }
	return m, nil
}

// Start begins a recording of source. Events are delivered to sink, which
// may be nil.
func (m *Manager) Start(ctx context.Context, source SourceSelector, sink EventSink) error {
	if !source.Valid() {
		return ErrInvalidSource
	}

	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if m.state.current() != StateStopped {
		return ErrAlreadyRecording
	}
	if sink == nil {
		sink = noopSink{}
	}

	outputPath, err := ResolveOutputPath(m.opts.OutputDir, m.opts.Extension, m.now())
	if err != nil {
		return err
	}

	capture, err := m.opts.NewCapture(source)
	if err != nil {
		return fmt.Errorf("screen-recorder: create capture source: %w", err)
	}
	if err := capture.Initialize(ctx); err != nil {
		return fmt.Errorf("screen-recorder: initialize capture source: %w", err)
	}

	encoder, err := m.opts.NewEncoder(outputPath)
	if err != nil {
		if stopErr := capture.Stop(); stopErr != nil {
			slog.Warn("screen-recorder: capture stop after failed start", "error", stopErr)
		}
		return fmt.Errorf("screen-recorder: create encoder: %w", err)
	}

	startedAt := m.now()
	if err := m.state.begin(startedAt); err != nil {
		_ = capture.Stop()
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:         uuid.New().String(),
		outputPath: outputPath,
		source:     source.String(),
		startedAt:  startedAt,
		capture:    capture,
		encoder:    encoder,
		engine:     analytics.NewEngine(startedAt),
		sink:       sink,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	m.mu.Lock()
	m.sess = s
	m.mu.Unlock()

	slog.Info("screen-recorder: recording started",
		"session_id", s.id,
		"source", s.source,
		"output", outputPath,
	)
	m.opts.Observer.RecordEvent(EventStarted)
	sink.Emit(EventRecordingUpdate, RecordingStatus{IsRecording: true})

	go m.runLoop(loopCtx, s)
	return nil
}

// Stop ends the recording and returns the output path.
//
// The capture loop is joined before the capture source is stopped and the
// encoder finalized. Teardown errors are joined and returned together with
// the path; the manager is Stopped afterwards regardless.
func (m *Manager) Stop(ctx context.Context) (string, error) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	duration, err := m.state.end()
	if err != nil {
		return "", err
	}

	m.mu.RLock()
	s := m.sess
	m.mu.RUnlock()

	<-s.done
	s.cancel()

	var errs []error
	if err := s.capture.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("screen-recorder: stop capture: %w", err))
	}
	if err := s.encoder.Finalize(); err != nil {
		errs = append(errs, fmt.Errorf("screen-recorder: finalize encoder: %w", err))
	}
	sidecar, err := s.engine.SaveMetadata(s.outputPath)
	if err != nil {
		errs = append(errs, fmt.Errorf("screen-recorder: save metadata: %w", err))
	}

	enc := s.encoder.Metrics()
	if m.opts.Catalog != nil {
		rec := RecordingInfo{
			ID:            s.id,
			OutputPath:    s.outputPath,
			SidecarPath:   sidecar,
			Source:        s.source,
			StartedAt:     s.startedAt,
			Duration:      duration.Seconds(),
			Frames:        s.frames.Load(),
			DroppedFrames: enc.DroppedFrames,
		}
		if err := m.opts.Catalog.Record(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("screen-recorder: catalog: %w", err))
		}
	}

	if r, ok := s.encoder.(arrivalsReporter); ok {
		fps := stats.Summarize(r.Arrivals())
		slog.Info("screen-recorder: capture rate summary",
			"fps_mean", fps.FPSMean,
			"fps_stddev", fps.FPSStdDev,
			"jitter_mean_ms", fps.JitterMean*1000,
			"stable", fps.IsStable,
		)
	}

	m.state.reset()
	m.mu.Lock()
	m.sess = nil
	m.mu.Unlock()

	slog.Info("screen-recorder: recording stopped",
		"session_id", s.id,
		"output", s.outputPath,
		"duration", duration,
		"frames", s.frames.Load(),
		"frames_analyzed", s.engine.Processed(),
		"dropped_frames", enc.DroppedFrames,
	)
	m.opts.Observer.RecordEvent(EventStopped)
	s.sink.Emit(EventRecordingUpdate, RecordingStatus{})

	return s.outputPath, errors.Join(errs...)
}

// Pause toggles between Recording and Paused.
func (m *Manager) Pause() error {
	state, err := m.state.togglePause()
	if err != nil {
		return err
	}

	event := EventResumed
	if state == StatePaused {
		event = EventPaused
	}
	slog.Info("screen-recorder: "+state.String(), "duration", m.state.status().Duration)
	m.opts.Observer.RecordEvent(event)

	m.mu.RLock()
	s := m.sess
	m.mu.RUnlock()
	if s != nil {
		s.sink.Emit(EventRecordingUpdate, m.state.status())
	}
	return nil
}

// Status reports the recording state and the recorded duration, pause time
// excluded.
func (m *Manager) Status() RecordingStatus {
	return m.state.status()
}

// Timeline returns a copy of the current session's timeline, oldest first.
// Without a session it returns an empty slice.
func (m *Manager) Timeline() []TimelineEntry {
	m.mu.RLock()
	s := m.sess
	m.mu.RUnlock()

	if s == nil {
		return []TimelineEntry{}
	}
	return s.engine.Snapshot()
}

// Metrics returns the latest metrics snapshot, zero without a session.
func (m *Manager) Metrics() MetricsSnapshot {
	m.mu.RLock()
	s := m.sess
	m.mu.RUnlock()

	if s == nil {
		return MetricsSnapshot{}
	}
	snap, _ := s.snapshot()
	return snap
}

// SessionInfo describes the active session. ok is false without one.
func (m *Manager) SessionInfo() (info SessionInfo, ok bool) {
	m.mu.RLock()
	s := m.sess
	m.mu.RUnlock()

	if s == nil {
		return SessionInfo{}, false
	}
	state := m.state.current()
	info = SessionInfo{
		ID:         s.id,
		OutputPath: s.outputPath,
		Source:     s.source,
		State:      state,
		StateName:  state.String(),
		Frames:     s.frames.Load(),
	}
	if _, err := s.snapshot(); err != nil {
		info.Error = err.Error()
	}
	return info, true
}

// Health reports "ok", or "degraded" when the loop of an active session
// ended on an encoder failure.
func (m *Manager) Health() Health {
	state := m.state.current()
	h := Health{Status: "ok", State: state.String()}

	m.mu.RLock()
	s := m.sess
	m.mu.RUnlock()
	if s == nil {
		return h
	}

	select {
	case <-s.done:
	default:
		h.LoopRunning = true
	}
	if _, err := s.snapshot(); err != nil {
		h.Status = "degraded"
		h.Error = err.Error()
	}
	return h
}
