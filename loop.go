package screenrecorder

import (
	"context"
	"log/slog"
	"time"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

const (
	pausedPollInterval   = 100 * time.Millisecond
	noFramePollInterval  = 16 * time.Millisecond
	captureRetryInterval = 100 * time.Millisecond

	metricsEmitInterval = time.Second
	statusEmitInterval  = 500 * time.Millisecond

	// repeated capture failures are warned about every Nth retry (~5s)
	captureWarnEvery = 50
)

// runLoop sequences capture, analysis and encoding until the state owner
// reports Stopped or the encoder fails. It never touches the session after
// closing done.
func (m *Manager) runLoop(ctx context.Context, s *session) {
	defer close(s.done)

	var (
		frames      uint64
		paused      bool
		lastMetrics time.Time
		lastStatus  time.Time
		failures    failureRun
	)

	slog.Debug("screen-recorder: capture loop started", "session_id", s.id)

loop:
	for {
		switch m.state.current() {
		case StateStopped:
			break loop
		case StatePaused:
			if !paused {
				paused = true
				slog.Debug("screen-recorder: capture loop paused", "session_id", s.id)
			}
			sleep(ctx, pausedPollInterval)
			continue
		}

		if paused {
			paused = false
			if r, ok := s.encoder.(rebaser); ok {
				r.Rebase()
			}
			slog.Debug("screen-recorder: capture loop resumed", "session_id", s.id)
		}

		frame, err := s.capture.CaptureFrame(ctx)
		switch {
		case err != nil:
			if failures.observe(err) {
				slog.Warn("screen-recorder: capture failed, retrying",
					"session_id", s.id,
					"consecutive", failures.count,
					"error", err,
				)
			} else {
				slog.Debug("screen-recorder: capture failed, retrying", "consecutive", failures.count, "error", err)
			}
			sleep(ctx, captureRetryInterval)

		case frame == nil:
			sleep(ctx, noFramePollInterval)

		default:
			if n := failures.reset(); n > 0 {
				slog.Info("screen-recorder: capture recovered", "session_id", s.id, "failed_polls", n)
			}
			frames++
			s.frames.Store(frames)

			s.engine.Process(frame)

			if err := s.encoder.Encode(ctx, frame); err != nil {
				slog.Error("screen-recorder: encoder failed, capture loop exiting",
					"session_id", s.id,
					"seq", frame.Seq,
					"trace_id", frame.TraceID,
					"error", err,
				)
				s.setFailure(err)
				m.opts.Observer.RecordEvent(EventEncoderFailed)
				break loop
			}
		}

		now := m.now()
		if now.Sub(lastMetrics) >= metricsEmitInterval {
			lastMetrics = now
			snap := types.MergeMetrics(s.encoder.Metrics(), m.opts.Sampler.Sample())
			s.setMetrics(snap)
			m.opts.Observer.ObserveMetrics(snap)
			s.sink.Emit(EventMetricsUpdate, snap)
		}
		if now.Sub(lastStatus) >= statusEmitInterval {
			lastStatus = now
			s.sink.Emit(EventRecordingUpdate, m.state.status())
		}
	}

	slog.Info("screen-recorder: capture loop exited",
		"session_id", s.id,
		"frames_processed", frames,
	)
}

// failureRun tracks consecutive capture failures so a dead source does not
// log a warning on every retry.
type failureRun struct {
	count int
	last  string
}

// observe counts err and reports whether it should be logged as a warning:
// the first failure of a run, a changed error, or every captureWarnEvery.
func (f *failureRun) observe(err error) bool {
	f.count++
	msg := err.Error()
	changed := msg != f.last
	f.last = msg
	return f.count == 1 || changed || f.count%captureWarnEvery == 0
}

// reset ends the run and returns how many failures it had.
func (f *failureRun) reset() int {
	n := f.count
	f.count = 0
	f.last = ""
	return n
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
