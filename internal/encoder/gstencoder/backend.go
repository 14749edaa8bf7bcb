//go:build gst

// Package gstencoder writes recordings through a GStreamer pipeline:
//
//	appsrc → videoconvert → x264enc → h264parse → matroskamux → filesink
package gstencoder

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// Extension is the container extension produced by this backend
const Extension = ".mkv"

// Config contains x264 settings
type Config struct {
	// BitrateKbps is the target bitrate (default 4000)
	BitrateKbps uint
	// KeyframeInterval is the maximum GOP length in frames (default 60)
	KeyframeInterval uint
	// FPS is the nominal rate written into the caps (default 30)
	FPS int
	// EOSTimeout bounds the wait for the muxer to finish on Close (default 10s)
	EOSTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BitrateKbps == 0 {
		c.BitrateKbps = 4000
	}
	if c.KeyframeInterval == 0 {
		c.KeyframeInterval = 60
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.EOSTimeout <= 0 {
		c.EOSTimeout = 10 * time.Second
	}
	return c
}

// Backend implements encoder.Backend on top of appsrc.
type Backend struct {
	path string
	cfg  Config

	pipeline *gst.Pipeline
	src      *app.Source
	size     int
	first    time.Time
	pushed   uint64
}

// NewBackend creates a GStreamer backend writing a Matroska file to path.
func NewBackend(path string, cfg Config) *Backend {
	return &Backend{path: path, cfg: cfg.withDefaults()}
}

func (b *Backend) Name() string { return "gstreamer-x264" }

func (b *Backend) Open(width, height int) error {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	src, err := app.NewAppSrc()
	if err != nil {
		return fmt.Errorf("failed to create appsrc: %w", err)
	}
	src.SetCaps(gst.NewCapsFromString(fmt.Sprintf(
		"video/x-raw,format=RGB,width=%d,height=%d,framerate=%d/1", width, height, b.cfg.FPS)))
	src.SetProperty("format", gst.FormatTime)
	src.SetProperty("is-live", true)

	names := []string{"videoconvert", "x264enc", "h264parse", "matroskamux", "filesink"}
	elems := make([]*gst.Element, 0, len(names)+1)
	elems = append(elems, src.Element)
	for _, name := range names {
		e, err := gst.NewElement(name)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
		elems = append(elems, e)
	}

	x264 := elems[2]
	x264.SetProperty("bitrate", b.cfg.BitrateKbps)
	x264.SetProperty("key-int-max", b.cfg.KeyframeInterval)

	filesink := elems[len(elems)-1]
	filesink.SetProperty("location", b.path)

	if err := pipeline.AddMany(elems...); err != nil {
		return fmt.Errorf("failed to add pipeline elements: %w", err)
	}
	if err := gst.ElementLinkMany(elems...); err != nil {
		return fmt.Errorf("failed to link pipeline elements: %w", err)
	}
	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}

	b.pipeline = pipeline
	b.src = src
	b.size = width * height * types.BytesPerPixel
	return nil
}

// Write pushes a frame stamped relative to the first frame's capture time.
func (b *Backend) Write(frame *types.Frame) error {
	if len(frame.Data) < b.size {
		return fmt.Errorf("short frame buffer: %d bytes, want %d", len(frame.Data), b.size)
	}
	if b.first.IsZero() {
		b.first = frame.Timestamp
	}

	buf := gst.NewBufferFromBytes(frame.Data[:b.size])
	pts := frame.Timestamp.Sub(b.first)
	if pts < 0 {
		pts = 0
	}
	buf.SetPresentationTimestamp(pts)

	if ret := b.src.PushBuffer(buf); ret != gst.FlowOK {
		return fmt.Errorf("appsrc push returned %v", ret)
	}
	b.pushed++
	return nil
}

// Close sends EOS and waits for the muxer to write its index.
func (b *Backend) Close() error {
	if b.pipeline == nil {
		return nil
	}
	defer func() {
		_ = b.pipeline.SetState(gst.StateNull)
		b.pipeline = nil
	}()

	if ret := b.src.EndStream(); ret != gst.FlowOK {
		return fmt.Errorf("appsrc end-of-stream returned %v", ret)
	}

	bus := b.pipeline.GetPipelineBus()
	deadline := time.Now().Add(b.cfg.EOSTimeout)
	for time.Now().Before(deadline) {
		msg := bus.TimedPop(100 * time.Millisecond)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			slog.Debug("gstencoder: end of stream reached", "output", b.path, "buffers", b.pushed)
			return nil
		case gst.MessageError:
			gerr := msg.ParseError()
			return fmt.Errorf("pipeline error: %s (%s)", gerr.Error(), gerr.DebugString())
		}
	}
	return fmt.Errorf("timed out after %s waiting for end of stream", b.cfg.EOSTimeout)
}
