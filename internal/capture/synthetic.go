package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// Synthetic generates a moving test pattern at the configured rate.
//
// CaptureFrame returns nil until the next frame is due, which mirrors a
// real grabber polled faster than it produces. Every SceneEvery the base
// color jumps to exercise scene-change detection.
type Synthetic struct {
	cfg        Config
	target     types.SourceSelector
	sceneEvery time.Duration
	now        func() time.Time

	mu          sync.Mutex
	initialized bool
	startTime   time.Time
	nextDue     time.Time
	seq         uint64
	bytes       uint64
}

// NewSynthetic creates a synthetic source for target.
func NewSynthetic(target types.SourceSelector, cfg Config) *Synthetic {
	return &Synthetic{
		cfg:        cfg.WithDefaults(),
		target:     target,
		sceneEvery: 3 * time.Second,
		now:        time.Now,
	}
}

// SetSceneInterval changes how often the pattern cuts to a new color.
func (s *Synthetic) SetSceneInterval(d time.Duration) {
	s.mu.Lock()
	s.sceneEvery = d
	s.mu.Unlock()
}

func (s *Synthetic) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return fmt.Errorf("capture: synthetic source already initialized")
	}
	s.initialized = true
	s.startTime = s.now()
	s.nextDue = s.startTime

	slog.Info("capture: synthetic source initialized",
		"target", s.target.String(),
		"resolution", fmt.Sprintf("%dx%d", s.cfg.Width, s.cfg.Height),
		"fps", s.cfg.FPS,
	)
	return nil
}

func (s *Synthetic) CaptureFrame(ctx context.Context) (*types.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	now := s.now()
	if now.Before(s.nextDue) {
		return nil, nil
	}
	interval := time.Second / time.Duration(s.cfg.FPS)
	s.nextDue = s.nextDue.Add(interval)
	if s.nextDue.Before(now) {
		// fell behind; skip instead of bursting
		s.nextDue = now.Add(interval)
	}

	s.seq++
	data := s.render(now.Sub(s.startTime))
	s.bytes += uint64(len(data))

	return &types.Frame{
		Seq:       s.seq,
		Timestamp: now,
		Width:     s.cfg.Width,
		Height:    s.cfg.Height,
		Data:      data,
		TraceID:   uuid.New().String(),
	}, nil
}

// render draws a horizontal gradient scrolling with time over a base color
// that changes every scene interval.
func (s *Synthetic) render(elapsed time.Duration) []byte {
	w, h := s.cfg.Width, s.cfg.Height
	data := make([]byte, s.cfg.FrameSize())

	scene := 0
	if s.sceneEvery > 0 {
		scene = int(elapsed / s.sceneEvery)
	}
	base := byte((scene * 97) % 256)
	shift := int(elapsed.Milliseconds() / 10)

	for y := 0; y < h; y++ {
		row := y * w * types.BytesPerPixel
		for x := 0; x < w; x++ {
			v := byte((x + shift) * 64 / w)
			i := row + x*types.BytesPerPixel
			data[i] = base + v
			data[i+1] = base/2 + v
			data[i+2] = 255 - base
		}
	}
	return data
}

func (s *Synthetic) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil
	}
	s.initialized = false

	slog.Info("capture: synthetic source stopped",
		"frames", s.seq,
		"duration", s.now().Sub(s.startTime),
	)
	return nil
}

// Stats returns capture counters.
func (s *Synthetic) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{FramesCaptured: s.seq, BytesRead: s.bytes}
}
