package screenrecorder

import "github.com/ritikZ18/screen-recoder-da/internal/types"

// Frame is a captured RGB24 frame
type Frame = types.Frame

// SourceSelector names the monitor or window to record
type SourceSelector = types.SourceSelector

// TimelineEntry is the analytics record derived from one frame
type TimelineEntry = types.TimelineEntry

// RecordingStatus is the recording-update payload
type RecordingStatus = types.RecordingStatus

// MetricsSnapshot is the metrics-update payload
type MetricsSnapshot = types.MetricsSnapshot

// EncoderMetrics contains encoder-side rate statistics
type EncoderMetrics = types.EncoderMetrics

// SystemSample is a process resource usage sample
type SystemSample = types.SystemSample

// RecordingInfo describes a finished recording
type RecordingInfo = types.RecordingInfo

// MonitorSource selects a monitor by index.
func MonitorSource(id uint32) SourceSelector { return types.MonitorSource(id) }

// WindowSource selects a window by platform handle.
func WindowSource(id uint64) SourceSelector { return types.WindowSource(id) }

// RecordingState is the lifecycle state of the manager
type RecordingState int

const (
	// StateStopped means no session exists
	StateStopped RecordingState = iota
	// StateRecording means frames are being captured and encoded
	StateRecording
	// StatePaused means the session exists but frames are not captured
	StatePaused
)

func (s RecordingState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// SessionInfo describes the active session
type SessionInfo struct {
	ID         string         `json:"id"`
	OutputPath string         `json:"output_path"`
	Source     string         `json:"source"`
	State      RecordingState `json:"-"`
	StateName  string         `json:"state"`
	Frames     uint64         `json:"frames"`
	// Error is set once the loop ended on an encoder failure
	Error string `json:"error,omitempty"`
}

// Health reports whether the recorder is able to make progress
type Health struct {
	Status      string `json:"status"`
	State       string `json:"state"`
	LoopRunning bool   `json:"loop_running"`
	Error       string `json:"error,omitempty"`
}
