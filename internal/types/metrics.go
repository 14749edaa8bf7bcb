package types

// TimelineEntry is the per-frame analytics record kept in the timeline and
// written to the metadata sidecar.
type TimelineEntry struct {
	// Time is seconds since the recording started
	Time float64 `json:"time"`
	// ColorDominance is the dominant luma bucket normalized to [0,1]
	ColorDominance float64 `json:"colorDominance"`
	// Brightness is the mean luma normalized to [0,1]
	Brightness float64 `json:"brightness"`
	// AudioLevel is a visual-activity proxy (brightness delta), not real audio
	AudioLevel float64 `json:"audioLevel"`
	// SceneChange is set when the luma histogram moved by more than 10% of the pixels
	SceneChange bool `json:"sceneChange"`
}

// RecordingStatus is the payload of the recording-update event
type RecordingStatus struct {
	IsRecording bool `json:"is_recording"`
	IsPaused    bool `json:"is_paused"`
	// Duration is recorded seconds, pause time excluded
	Duration float64 `json:"duration"`
}

// EncoderMetrics contains encoder-side rate statistics
type EncoderMetrics struct {
	// FramesEncoded is the number of frames handed to the encoder
	FramesEncoded uint64
	// CaptureFPS is the arrival rate over the last samples
	CaptureFPS float64
	// EncodeFPS is 1000 / EncodeLatencyMS (0 without samples)
	EncodeFPS float64
	// DroppedFrames is the estimated number of missed captures
	DroppedFrames uint64
	// EncodeLatencyMS is the average per-frame processing time
	EncodeLatencyMS float64
}

// SystemSample is a process resource usage sample
type SystemSample struct {
	CPUPercent float64
	MemoryMB   float64
	// ProcessScoped is false when the sample fell back to system-wide figures
	ProcessScoped bool
}

// MetricsSnapshot is the payload of the metrics-update event
type MetricsSnapshot struct {
	CaptureFPS      float64 `json:"capture_fps"`
	EncodeFPS       float64 `json:"encode_fps"`
	DroppedFrames   uint64  `json:"dropped_frames"`
	EncodeLatencyMS float64 `json:"encode_latency_ms"`
	CPUUsagePercent float64 `json:"cpu_usage_percent"`
	MemoryUsageMB   float64 `json:"memory_usage_mb"`
}

// MergeMetrics combines encoder and system figures into one snapshot.
func MergeMetrics(enc EncoderMetrics, sys SystemSample) MetricsSnapshot {
	return MetricsSnapshot{
		CaptureFPS:      enc.CaptureFPS,
		EncodeFPS:       enc.EncodeFPS,
		DroppedFrames:   enc.DroppedFrames,
		EncodeLatencyMS: enc.EncodeLatencyMS,
		CPUUsagePercent: sys.CPUPercent,
		MemoryUsageMB:   sys.MemoryMB,
	}
}
