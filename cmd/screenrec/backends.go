package main

import (
	"errors"
	"fmt"

	screenrecorder "github.com/ritikZ18/screen-recoder-da"
	"github.com/ritikZ18/screen-recoder-da/internal/capture"
	"github.com/ritikZ18/screen-recoder-da/internal/config"
	"github.com/ritikZ18/screen-recoder-da/internal/encoder"
)

// gstCapture and gstEncoder are set by backend_gst.go in builds with the
// gst tag.
var (
	gstCapture func(src screenrecorder.SourceSelector, cfg capture.Config) screenrecorder.CaptureSource
	gstEncoder func(path string, cfg config.EncoderConfig, fps int) encoder.Backend
)

var errNoGStreamer = errors.New("built without GStreamer support (rebuild with -tags gst)")

func captureConfig(cfg *config.Config) capture.Config {
	return capture.Config{
		Width:   cfg.Capture.Width,
		Height:  cfg.Capture.Height,
		FPS:     cfg.Capture.FPS,
		Display: cfg.Capture.Display,
		Binary:  cfg.Capture.FFmpeg,
	}
}

func newCaptureFactory(cfg *config.Config) (screenrecorder.CaptureFactory, error) {
	cc := captureConfig(cfg)

	switch cfg.Capture.Backend {
	case "synthetic":
		return func(src screenrecorder.SourceSelector) (screenrecorder.CaptureSource, error) {
			return capture.NewSynthetic(src, cc), nil
		}, nil
	case "ffmpeg":
		return func(src screenrecorder.SourceSelector) (screenrecorder.CaptureSource, error) {
			return capture.NewFFmpegSource(src, cc), nil
		}, nil
	case "gstreamer":
		if gstCapture == nil {
			return nil, errNoGStreamer
		}
		return func(src screenrecorder.SourceSelector) (screenrecorder.CaptureSource, error) {
			return gstCapture(src, cc), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown capture backend %q", cfg.Capture.Backend)
	}
}

func newEncoderFactory(cfg *config.Config) (screenrecorder.EncoderFactory, error) {
	ec := cfg.Encoder
	fps := cfg.Capture.FPS

	var backend func(path string) encoder.Backend
	switch ec.Backend {
	case "raw":
		backend = func(path string) encoder.Backend { return encoder.NewRawBackend(path) }
	case "ffmpeg":
		if err := encoder.CheckFFmpeg(cfg.Capture.FFmpeg); err != nil {
			return nil, err
		}
		backend = func(path string) encoder.Backend {
			return encoder.NewFFmpegBackend(path, encoder.FFmpegConfig{
				Binary:    cfg.Capture.FFmpeg,
				Codec:     ec.Codec,
				Preset:    ec.Preset,
				CRF:       ec.CRF,
				FPS:       fps,
				LogStderr: ec.LogStderr,
			})
		}
	case "gstreamer":
		if gstEncoder == nil {
			return nil, errNoGStreamer
		}
		backend = func(path string) encoder.Backend { return gstEncoder(path, ec, fps) }
	default:
		return nil, fmt.Errorf("unknown encoder backend %q", ec.Backend)
	}

	return func(path string) (screenrecorder.Encoder, error) {
		return encoder.New(path, backend(path)), nil
	}, nil
}
