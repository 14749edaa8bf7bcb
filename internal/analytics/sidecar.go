package analytics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// SidecarSuffix replaces the media extension to name the metadata document
const SidecarSuffix = ".meta.json"

// Metadata is the sidecar document written next to a recording
type Metadata struct {
	VideoPath string                `json:"video_path"`
	Entries   []types.TimelineEntry `json:"entries"`
}

// SidecarPath derives the metadata path from a media path:
// "rec/recording_20240101_120000.mkv" -> "rec/recording_20240101_120000.meta.json".
func SidecarPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + SidecarSuffix
}

// SaveMetadata writes the current timeline to the sidecar of outputPath and
// returns the sidecar path.
func (e *Engine) SaveMetadata(outputPath string) (string, error) {
	meta := Metadata{
		VideoPath: outputPath,
		Entries:   e.Snapshot(),
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("analytics: failed to marshal metadata: %w", err)
	}

	path := SidecarPath(outputPath)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("analytics: failed to write sidecar: %w", err)
	}

	slog.Info("analytics: metadata saved",
		"path", path,
		"entries", len(meta.Entries),
	)

	return path, nil
}

// LoadMetadata reads a sidecar document.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("analytics: failed to read sidecar: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("analytics: failed to parse sidecar: %w", err)
	}
	if meta.Entries == nil {
		meta.Entries = []types.TimelineEntry{}
	}

	return &meta, nil
}
