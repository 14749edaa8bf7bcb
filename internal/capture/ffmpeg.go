package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// FFmpegSource grabs the screen with an ffmpeg subprocess writing raw RGB24
// frames to stdout. A reader goroutine keeps only the latest frame, so a
// slow recorder sees drops rather than growing latency.
//
// The platform input (x11grab, gdigrab, avfoundation) is chosen by
// inputArgs, implemented once per OS. When the grabber exits, CaptureFrame
// keeps reporting the exit error and restarts ffmpeg with backoff.
type FFmpegSource struct {
	cfg      Config
	target   types.SourceSelector
	restarts *Restarter

	mu          sync.Mutex
	initialized bool
	cmd         *exec.Cmd
	cancel      context.CancelFunc
	done        chan struct{}
	readErr     error

	box   Mailbox
	seq   uint64
	bytes uint64
}

// NewFFmpegSource creates an ffmpeg-backed source for target.
func NewFFmpegSource(target types.SourceSelector, cfg Config) *FFmpegSource {
	cfg = cfg.WithDefaults()
	return &FFmpegSource{cfg: cfg, target: target, restarts: NewRestarter(cfg.Restart)}
}

// Args returns the complete ffmpeg command line for this source.
func (s *FFmpegSource) Args() ([]string, error) {
	input, err := inputArgs(s.target, s.cfg)
	if err != nil {
		return nil, err
	}
	args := []string{"-hide_banner", "-loglevel", "error"}
	args = append(args, input...)
	args = append(args,
		"-vf", fmt.Sprintf("scale=%d:%d", s.cfg.Width, s.cfg.Height),
		"-r", strconv.Itoa(s.cfg.FPS),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	)
	return args, nil
}

func (s *FFmpegSource) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return fmt.Errorf("capture: ffmpeg source already initialized")
	}

	args, err := s.Args()
	if err != nil {
		return err
	}
	if _, err := exec.LookPath(s.cfg.Binary); err != nil {
		return fmt.Errorf("capture: %s not found: %w", s.cfg.Binary, err)
	}
	if err := s.startLocked(args); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// startLocked spawns the grabber and its reader. Callers hold s.mu.
func (s *FFmpegSource) startLocked(args []string) error {
	// The grabber outlives Initialize's ctx; it is bound to Stop instead
	runCtx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(runCtx, s.cfg.Binary, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("capture: ffmpeg stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("capture: start ffmpeg: %w", err)
	}

	done := make(chan struct{})
	s.cmd = cmd
	s.cancel = cancel
	s.done = done
	s.readErr = nil

	go s.readLoop(stdout, done)

	slog.Info("capture: ffmpeg grabber started",
		"target", s.target.String(),
		"resolution", fmt.Sprintf("%dx%d", s.cfg.Width, s.cfg.Height),
		"fps", s.cfg.FPS,
		"pid", cmd.Process.Pid,
	)
	return nil
}

// readLoop cuts stdout into fixed-size frames until the process exits.
func (s *FFmpegSource) readLoop(stdout io.Reader, done chan struct{}) {
	defer close(done)

	r := bufio.NewReaderSize(stdout, s.cfg.FrameSize())
	for {
		buf := make([]byte, s.cfg.FrameSize())
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				err = ErrSourceClosed
			}
			s.mu.Lock()
			s.readErr = err
			s.mu.Unlock()
			slog.Debug("capture: ffmpeg reader exited", "error", err)
			return
		}

		seq := atomic.AddUint64(&s.seq, 1)
		atomic.AddUint64(&s.bytes, uint64(len(buf)))
		s.box.Put(&types.Frame{
			Seq:       seq,
			Timestamp: time.Now(),
			Width:     s.cfg.Width,
			Height:    s.cfg.Height,
			Data:      buf,
			TraceID:   uuid.New().String(),
		})
	}
}

func (s *FFmpegSource) CaptureFrame(ctx context.Context) (*types.Frame, error) {
	s.mu.Lock()
	initialized := s.initialized
	readErr := s.readErr
	s.mu.Unlock()

	if !initialized {
		return nil, ErrNotInitialized
	}
	if f := s.box.Take(); f != nil {
		s.restarts.Reset()
		return f, nil
	}
	if readErr == nil {
		return nil, nil
	}

	ran, err := s.restarts.Attempt(s.restart)
	switch {
	case errors.Is(err, ErrRestartsExhausted):
		return nil, fmt.Errorf("%w: %w", readErr, err)
	case ran && err == nil:
		return nil, nil
	default:
		return nil, readErr
	}
}

// restart reaps the exited grabber and spawns a new one.
func (s *FFmpegSource) restart() error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	cmd, cancel, done := s.cmd, s.cancel, s.done
	s.cmd = nil
	s.mu.Unlock()

	if cmd != nil {
		reap(cmd, cancel, done)
	}

	args, err := s.Args()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	return s.startLocked(args)
}

func (s *FFmpegSource) Stop() error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.initialized = false
	cmd, cancel, done := s.cmd, s.cancel, s.done
	s.cmd = nil
	s.mu.Unlock()

	if cmd != nil {
		reap(cmd, cancel, done)
	}

	st := s.Stats()
	slog.Info("capture: ffmpeg grabber stopped",
		"frames", st.FramesCaptured,
		"dropped", st.FramesDropped,
		"bytes", st.BytesRead,
		"restarts", st.Restarts,
	)
	return nil
}

// reap kills the grabber and waits for its reader and process.
func reap(cmd *exec.Cmd, cancel context.CancelFunc, done <-chan struct{}) {
	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		slog.Warn("capture: ffmpeg reader did not exit in time")
	}
	// Killed by cancel; the exit status carries no information
	_ = cmd.Wait()
}

// Stats returns capture counters.
func (s *FFmpegSource) Stats() Stats {
	_, dropped := s.box.Stats()
	return Stats{
		FramesCaptured: atomic.LoadUint64(&s.seq),
		FramesDropped:  dropped,
		BytesRead:      atomic.LoadUint64(&s.bytes),
		Restarts:       s.restarts.Restarts(),
	}
}
