package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

func TestMailbox_LatestWins(t *testing.T) {
	var box Mailbox

	if f := box.Take(); f != nil {
		t.Fatalf("Take() on empty Mailbox = %+v, want nil", f)
	}

	box.Put(&types.Frame{Seq: 1})
	box.Put(&types.Frame{Seq: 2})
	box.Put(&types.Frame{Seq: 3})

	f := box.Take()
	if f == nil || f.Seq != 3 {
		t.Fatalf("Take() = %+v, want seq 3", f)
	}
	if again := box.Take(); again != nil {
		t.Errorf("second Take() = %+v, want nil", again)
	}

	put, dropped := box.Stats()
	if put != 3 || dropped != 2 {
		t.Errorf("Stats() = (%d, %d), want (3, 2)", put, dropped)
	}
}

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time { return c.t }

func newTestSynthetic(fps int) (*Synthetic, *stepClock) {
	clk := &stepClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s := NewSynthetic(types.MonitorSource(0), Config{Width: 8, Height: 4, FPS: fps})
	s.now = clk.now
	return s, clk
}

func TestSynthetic_Pacing(t *testing.T) {
	s, clk := newTestSynthetic(10)
	ctx := context.Background()

	if _, err := s.CaptureFrame(ctx); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("CaptureFrame() before Initialize error = %v, want ErrNotInitialized", err)
	}
	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	f, err := s.CaptureFrame(ctx)
	if err != nil || f == nil {
		t.Fatalf("first CaptureFrame() = %v, %v; want a frame", f, err)
	}
	if f.Width != 8 || f.Height != 4 || len(f.Data) != 8*4*3 {
		t.Errorf("frame = %dx%d with %d bytes, want 8x4 with 96 bytes", f.Width, f.Height, len(f.Data))
	}

	clk.t = clk.t.Add(50 * time.Millisecond)
	if f, err := s.CaptureFrame(ctx); err != nil || f != nil {
		t.Errorf("CaptureFrame() before due = %v, %v; want nil, nil", f, err)
	}

	clk.t = clk.t.Add(50 * time.Millisecond)
	f, err = s.CaptureFrame(ctx)
	if err != nil || f == nil || f.Seq != 2 {
		t.Errorf("CaptureFrame() when due = %+v, %v; want seq 2", f, err)
	}

	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if _, err := s.CaptureFrame(ctx); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("CaptureFrame() after Stop error = %v, want ErrNotInitialized", err)
	}
}

func TestSynthetic_SceneCut(t *testing.T) {
	s, clk := newTestSynthetic(30)
	s.SetSceneInterval(time.Second)
	ctx := context.Background()
	if err := s.Initialize(ctx); err != nil {
		t.Fatal(err)
	}

	first, _ := s.CaptureFrame(ctx)
	clk.t = clk.t.Add(1500 * time.Millisecond)
	second, _ := s.CaptureFrame(ctx)
	if first == nil || second == nil {
		t.Fatal("expected two frames")
	}
	if first.Data[2] == second.Data[2] {
		t.Errorf("blue channel unchanged across a scene cut (%d)", first.Data[2])
	}
}

func TestSynthetic_DoubleInitialize(t *testing.T) {
	s, _ := newTestSynthetic(30)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Initialize(context.Background()); err == nil {
		t.Error("second Initialize() succeeded, want error")
	}
}

func TestFFmpegSource_NotInitialized(t *testing.T) {
	s := NewFFmpegSource(types.MonitorSource(0), Config{})
	if _, err := s.CaptureFrame(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("CaptureFrame() error = %v, want ErrNotInitialized", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() on unstarted source error = %v", err)
	}
}
