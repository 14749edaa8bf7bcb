package encoder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

type fakeBackend struct {
	opens    int
	width    int
	height   int
	writes   int
	closes   int
	writeErr error
	openErr  error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Open(w, h int) error {
	f.opens++
	f.width, f.height = w, h
	return f.openErr
}

func (f *fakeBackend) Write(*types.Frame) error {
	f.writes++
	return f.writeErr
}

func (f *fakeBackend) Close() error {
	f.closes++
	return nil
}

func frame(seq uint64, w, h int) *types.Frame {
	return &types.Frame{
		Seq:       seq,
		Width:     w,
		Height:    h,
		Data:      make([]byte, w*h*types.BytesPerPixel),
		Timestamp: time.Now(),
	}
}

func TestEncoder_OpensWithFirstFrame(t *testing.T) {
	be := &fakeBackend{}
	enc := New("out.mkv", be)
	ctx := context.Background()

	for i := uint64(1); i <= 3; i++ {
		if err := enc.Encode(ctx, frame(i, 16, 8)); err != nil {
			t.Fatalf("Encode(%d) error = %v", i, err)
		}
	}

	if be.opens != 1 || be.width != 16 || be.height != 8 {
		t.Errorf("backend opened %d times as %dx%d, want once as 16x8", be.opens, be.width, be.height)
	}
	if be.writes != 3 {
		t.Errorf("backend writes = %d, want 3", be.writes)
	}
	if m := enc.Metrics(); m.FramesEncoded != 3 {
		t.Errorf("FramesEncoded = %d, want 3", m.FramesEncoded)
	}
}

func TestEncoder_DimensionChangeIsFatal(t *testing.T) {
	enc := New("out.mkv", &fakeBackend{})
	ctx := context.Background()

	if err := enc.Encode(ctx, frame(1, 16, 8)); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	err := enc.Encode(ctx, frame(2, 32, 8))
	if !errors.Is(err, ErrDimensionsChanged) {
		t.Errorf("Encode() error = %v, want ErrDimensionsChanged", err)
	}
}

func TestEncoder_BackendErrors(t *testing.T) {
	t.Run("open failure", func(t *testing.T) {
		boom := errors.New("no disk")
		enc := New("out.mkv", &fakeBackend{openErr: boom})
		if err := enc.Encode(context.Background(), frame(1, 4, 4)); !errors.Is(err, boom) {
			t.Errorf("Encode() error = %v, want %v", err, boom)
		}
	})

	t.Run("write failure", func(t *testing.T) {
		boom := errors.New("broken pipe")
		enc := New("out.mkv", &fakeBackend{writeErr: boom})
		if err := enc.Encode(context.Background(), frame(1, 4, 4)); !errors.Is(err, boom) {
			t.Errorf("Encode() error = %v, want %v", err, boom)
		}
	})

	t.Run("zero size first frame", func(t *testing.T) {
		enc := New("out.mkv", &fakeBackend{})
		if err := enc.Encode(context.Background(), &types.Frame{}); err == nil {
			t.Error("Encode() of empty frame succeeded, want error")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		enc := New("out.mkv", &fakeBackend{})
		if err := enc.Encode(ctx, frame(1, 4, 4)); !errors.Is(err, context.Canceled) {
			t.Errorf("Encode() error = %v, want context.Canceled", err)
		}
	})
}

func TestEncoder_RejectedFramesNotCounted(t *testing.T) {
	be := &fakeBackend{}
	enc := New("out.mkv", be)
	ctx := context.Background()

	if err := enc.Encode(ctx, frame(1, 4, 4)); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := enc.Encode(ctx, frame(2, 8, 4)); !errors.Is(err, ErrDimensionsChanged) {
		t.Fatalf("Encode() error = %v, want ErrDimensionsChanged", err)
	}

	be.writeErr = errors.New("broken pipe")
	if err := enc.Encode(ctx, frame(3, 4, 4)); err == nil {
		t.Fatal("Encode() with failing backend succeeded")
	}

	if err := enc.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if err := enc.Encode(ctx, frame(4, 4, 4)); !errors.Is(err, ErrFinalized) {
		t.Fatalf("Encode() error = %v, want ErrFinalized", err)
	}

	if m := enc.Metrics(); m.FramesEncoded != 1 {
		t.Errorf("FramesEncoded = %d, want 1 (only the written frame)", m.FramesEncoded)
	}
	if n := len(enc.Arrivals()); n != 1 {
		t.Errorf("Arrivals() = %d entries, want 1", n)
	}
}

func TestEncoder_Finalize(t *testing.T) {
	t.Run("closes once", func(t *testing.T) {
		be := &fakeBackend{}
		enc := New("out.mkv", be)
		if err := enc.Encode(context.Background(), frame(1, 4, 4)); err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if err := enc.Finalize(); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if err := enc.Finalize(); err != nil {
			t.Fatalf("second Finalize() error = %v", err)
		}
		if be.closes != 1 {
			t.Errorf("backend closed %d times, want 1", be.closes)
		}
		if err := enc.Encode(context.Background(), frame(2, 4, 4)); !errors.Is(err, ErrFinalized) {
			t.Errorf("Encode() after Finalize error = %v, want ErrFinalized", err)
		}
	})

	t.Run("without frames", func(t *testing.T) {
		be := &fakeBackend{}
		if err := New("out.mkv", be).Finalize(); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if be.closes != 0 {
			t.Errorf("unopened backend closed %d times, want 0", be.closes)
		}
	})
}

func TestEncoder_LatencyAndRebase(t *testing.T) {
	enc := New("out.mkv", &fakeBackend{})

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	enc.now = func() time.Time {
		// start, end pairs: every write takes 5ms, frames arrive 1s apart
		calls++
		if calls%2 == 1 {
			return clock.Add(time.Duration(calls/2) * time.Second)
		}
		return clock.Add(time.Duration(calls/2-1)*time.Second + 5*time.Millisecond)
	}

	ctx := context.Background()
	if err := enc.Encode(ctx, frame(1, 4, 4)); err != nil {
		t.Fatal(err)
	}
	enc.Rebase()
	if err := enc.Encode(ctx, frame(2, 4, 4)); err != nil {
		t.Fatal(err)
	}

	m := enc.Metrics()
	if m.DroppedFrames != 0 {
		t.Errorf("DroppedFrames = %d after Rebase, want 0", m.DroppedFrames)
	}
	if m.EncodeLatencyMS < 4.999 || m.EncodeLatencyMS > 5.001 {
		t.Errorf("EncodeLatencyMS = %v, want 5", m.EncodeLatencyMS)
	}
	if m.EncodeFPS < 199.9 || m.EncodeFPS > 200.1 {
		t.Errorf("EncodeFPS = %v, want 200", m.EncodeFPS)
	}
}

func TestRawBackend_WritesFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording"+RawExtension)
	enc := New(path, NewRawBackend(path))

	for i := uint64(1); i <= 4; i++ {
		f := frame(i, 3, 2)
		for j := range f.Data {
			f.Data[j] = byte(i)
		}
		if err := enc.Encode(context.Background(), f); err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
	}
	if err := enc.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(data) != 4*3*2*3 {
		t.Fatalf("file size = %d, want %d", len(data), 4*3*2*3)
	}
	if data[0] != 1 || data[len(data)-1] != 4 {
		t.Errorf("frame order not preserved: first=%d last=%d", data[0], data[len(data)-1])
	}
}

func TestRawBackend_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exists.rgb")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewRawBackend(path).Open(2, 2); err == nil {
		t.Error("Open() over existing file succeeded, want error")
	}
}

func TestFFmpegBackend_Args(t *testing.T) {
	be := NewFFmpegBackend("/tmp/out.mkv", FFmpegConfig{FPS: 60})
	args := strings.Join(be.Args(1280, 720), " ")

	for _, want := range []string{
		"-f rawvideo",
		"-pix_fmt rgb24",
		"-s 1280x720",
		"-r 60",
		"-i -",
		"-c:v libx264",
		"-preset ultrafast",
		"-crf 23",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("Args() = %q, missing %q", args, want)
		}
	}
	if !strings.HasSuffix(args, "/tmp/out.mkv") {
		t.Errorf("Args() = %q, want output path last", args)
	}
}

func TestFFmpegBackend_Encode(t *testing.T) {
	if err := CheckFFmpeg(""); err != nil {
		t.Skip("ffmpeg not installed")
	}

	path := filepath.Join(t.TempDir(), "clip.mkv")
	enc := New(path, NewFFmpegBackend(path, FFmpegConfig{}))
	for i := uint64(1); i <= 10; i++ {
		if err := enc.Encode(context.Background(), frame(i, 64, 48)); err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
	}
	if err := enc.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output is empty")
	}
}
