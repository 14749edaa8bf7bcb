package screenrecorder

import (
	"context"
	"time"
)

// Event names published to an EventSink
const (
	EventRecordingUpdate = "recording-update"
	EventMetricsUpdate   = "metrics-update"
)

// CaptureSource produces raw frames from a monitor or window.
//
// CaptureFrame must not block for longer than one frame interval. It returns
// (nil, nil) when no new frame is available yet; errors are treated as
// transient and the call is retried.
type CaptureSource interface {
	Initialize(ctx context.Context) error
	CaptureFrame(ctx context.Context) (*Frame, error)
	Stop() error
}

// Encoder consumes frames and writes the output file.
//
// Encode errors are fatal to the session. Finalize is called once after the
// capture loop has exited.
type Encoder interface {
	Encode(ctx context.Context, frame *Frame) error
	Metrics() EncoderMetrics
	Finalize() error
}

// EventSink receives status and metrics events. Emit must not block.
type EventSink interface {
	Emit(event string, payload any)
}

// CaptureFactory creates the capture source for a selector
type CaptureFactory func(source SourceSelector) (CaptureSource, error)

// EncoderFactory creates the encoder for an output path
type EncoderFactory func(outputPath string) (Encoder, error)

// SystemSampler reports process resource usage
type SystemSampler interface {
	Sample() SystemSample
}

// Observer receives lifecycle events and metrics for instrumentation
type Observer interface {
	RecordEvent(name string)
	ObserveMetrics(m MetricsSnapshot)
}

// Catalog stores finished recordings
type Catalog interface {
	Record(ctx context.Context, rec RecordingInfo) error
}

// rebaser is implemented by encoders whose rate tracker must skip the
// pause gap after a resume.
type rebaser interface {
	Rebase()
}

// arrivalsReporter is implemented by encoders that keep frame arrival times.
type arrivalsReporter interface {
	Arrivals() []time.Time
}

type noopSink struct{}

func (noopSink) Emit(string, any) {}

type noopObserver struct{}

func (noopObserver) RecordEvent(string)             {}
func (noopObserver) ObserveMetrics(MetricsSnapshot) {}
