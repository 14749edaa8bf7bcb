package encoder

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// FFmpegConfig configures the ffmpeg subprocess encoder
type FFmpegConfig struct {
	// Binary is the ffmpeg executable (default "ffmpeg")
	Binary string
	// Codec is the video codec (default "libx264")
	Codec string
	// Preset is the codec speed preset (default "ultrafast")
	Preset string
	// CRF is the constant rate factor (default 23)
	CRF int
	// FPS is the nominal input rate written into the stream (default 30)
	FPS int
	// LogStderr writes ffmpeg diagnostics to <output>.ffmpeg.log
	LogStderr bool
}

func (c FFmpegConfig) withDefaults() FFmpegConfig {
	if c.Binary == "" {
		c.Binary = "ffmpeg"
	}
	if c.Codec == "" {
		c.Codec = "libx264"
	}
	if c.Preset == "" {
		c.Preset = "ultrafast"
	}
	if c.CRF <= 0 {
		c.CRF = 23
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	return c
}

// FFmpegBackend pipes raw RGB24 frames into an ffmpeg process that encodes
// them into the output container (chosen by ffmpeg from the extension).
type FFmpegBackend struct {
	cfg  FFmpegConfig
	path string

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	logFile *os.File
	size    int
}

// NewFFmpegBackend creates an ffmpeg backend writing to path.
func NewFFmpegBackend(path string, cfg FFmpegConfig) *FFmpegBackend {
	return &FFmpegBackend{cfg: cfg.withDefaults(), path: path}
}

// CheckFFmpeg reports whether the ffmpeg binary can be found.
func CheckFFmpeg(binary string) error {
	if binary == "" {
		binary = "ffmpeg"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("encoder: %s not found in PATH: %w", binary, err)
	}
	return nil
}

func (f *FFmpegBackend) Name() string { return "ffmpeg" }

// Args returns the ffmpeg command line for the given input size.
func (f *FFmpegBackend) Args(width, height int) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "warning",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.Itoa(f.cfg.FPS),
		"-i", "-",
		// yuv420p needs even dimensions
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-c:v", f.cfg.Codec,
		"-preset", f.cfg.Preset,
		"-crf", strconv.Itoa(f.cfg.CRF),
		"-pix_fmt", "yuv420p",
		"-n",
		f.path,
	}
}

func (f *FFmpegBackend) Open(width, height int) error {
	cmd := exec.Command(f.cfg.Binary, f.Args(width, height)...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdin: %w", err)
	}

	if f.cfg.LogStderr {
		if logFile, err := os.Create(f.path + ".ffmpeg.log"); err == nil {
			cmd.Stderr = logFile
			f.logFile = logFile
		}
	}

	if err := cmd.Start(); err != nil {
		f.closeLog()
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	f.cmd = cmd
	f.stdin = stdin
	f.size = width * height * types.BytesPerPixel

	slog.Debug("encoder: ffmpeg started", "pid", cmd.Process.Pid, "output", f.path)
	return nil
}

func (f *FFmpegBackend) Write(frame *types.Frame) error {
	if len(frame.Data) < f.size {
		return fmt.Errorf("short frame buffer: %d bytes, want %d", len(frame.Data), f.size)
	}
	if _, err := f.stdin.Write(frame.Data[:f.size]); err != nil {
		return fmt.Errorf("ffmpeg pipe: %w", err)
	}
	return nil
}

// Close ends the input stream and waits for ffmpeg to write the trailer.
// ffmpeg is killed if it has not exited after 10 seconds.
func (f *FFmpegBackend) Close() error {
	defer f.closeLog()

	closeErr := f.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- f.cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("ffmpeg exited: %w", err)
		}
	case <-time.After(10 * time.Second):
		_ = f.cmd.Process.Kill()
		<-done
		return fmt.Errorf("ffmpeg did not exit in time, killed")
	}

	if closeErr != nil {
		return fmt.Errorf("ffmpeg stdin close: %w", closeErr)
	}
	return nil
}

func (f *FFmpegBackend) closeLog() {
	if f.logFile != nil {
		f.logFile.Close()
		f.logFile = nil
	}
}
