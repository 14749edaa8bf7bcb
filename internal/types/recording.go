package types

import "time"

// RecordingInfo describes a finished recording for the catalog
type RecordingInfo struct {
	ID          string    `json:"id"`
	OutputPath  string    `json:"output_path"`
	SidecarPath string    `json:"sidecar_path"`
	Source      string    `json:"source"`
	StartedAt   time.Time `json:"started_at"`
	// Duration is recorded seconds, pause time excluded
	Duration      float64 `json:"duration"`
	Frames        uint64  `json:"frames"`
	DroppedFrames uint64  `json:"dropped_frames"`
}
