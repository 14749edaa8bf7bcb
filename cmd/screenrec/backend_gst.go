//go:build gst

package main

import (
	screenrecorder "github.com/ritikZ18/screen-recoder-da"
	"github.com/ritikZ18/screen-recoder-da/internal/capture"
	"github.com/ritikZ18/screen-recoder-da/internal/capture/gstcapture"
	"github.com/ritikZ18/screen-recoder-da/internal/config"
	"github.com/ritikZ18/screen-recoder-da/internal/encoder"
	"github.com/ritikZ18/screen-recoder-da/internal/encoder/gstencoder"
)

func init() {
	gstCapture = func(src screenrecorder.SourceSelector, cfg capture.Config) screenrecorder.CaptureSource {
		return gstcapture.NewSource(src, cfg)
	}
	gstEncoder = func(path string, cfg config.EncoderConfig, fps int) encoder.Backend {
		return gstencoder.NewBackend(path, gstencoder.Config{
			BitrateKbps: cfg.BitrateKbps,
			FPS:         fps,
		})
	}
}
