package capture

import (
	"errors"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

var (
	// ErrNotImplemented is returned by backends that cannot capture on this platform
	ErrNotImplemented = errors.New("capture: backend is not implemented on this platform")

	// ErrNotInitialized is returned by CaptureFrame before Initialize
	ErrNotInitialized = errors.New("capture: source not initialized")

	// ErrSourceClosed is returned by CaptureFrame after the grabber exited
	ErrSourceClosed = errors.New("capture: source closed")
)

// Config contains settings shared by capture backends
type Config struct {
	// Width and Height are the output frame size in pixels
	Width  int
	Height int
	// FPS is the grab rate
	FPS int
	// Display is the X11 display for Linux backends (default ":0.0")
	Display string
	// Binary is the ffmpeg executable for the ffmpeg backend
	Binary string
	// Restart paces restarts of a grabber that exited
	Restart RestartConfig
}

// WithDefaults fills unset fields with 1280x720 at 30 fps on display :0.0.
func (c Config) WithDefaults() Config {
	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 720
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.Display == "" {
		c.Display = ":0.0"
	}
	if c.Binary == "" {
		c.Binary = "ffmpeg"
	}
	c.Restart = c.Restart.withDefaults()
	return c
}

// FrameSize returns the byte size of one RGB24 frame.
func (c Config) FrameSize() int {
	return c.Width * c.Height * types.BytesPerPixel
}

// Stats contains capture counters
type Stats struct {
	FramesCaptured uint64
	// FramesDropped counts frames replaced before the recorder polled them
	FramesDropped uint64
	BytesRead     uint64
	// Restarts counts grabber restarts after it exited
	Restarts uint64
}
