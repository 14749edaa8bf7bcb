package analytics

import (
	"math"
	"path/filepath"
	"reflect"
	"testing"
	"testing/quick"
	"time"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

var testStart = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// solidFrame builds a frame filled with a single RGB color
func solidFrame(w, h int, r, g, b byte, at time.Duration) *types.Frame {
	data := make([]byte, w*h*types.BytesPerPixel)
	for i := 0; i < len(data); i += 3 {
		data[i], data[i+1], data[i+2] = r, g, b
	}
	return &types.Frame{Width: w, Height: h, Data: data, Timestamp: testStart.Add(at)}
}

// splitFrame fills the first n pixels with one gray level and the rest with another
func splitFrame(w, h, n int, a, b byte) *types.Frame {
	f := solidFrame(w, h, b, b, b, 0)
	for i := 0; i < n*3; i++ {
		f.Data[i] = a
	}
	return f
}

// TestTimeline_Property1_Bounded tests the timeline capacity
//
// Property: after n Process calls the timeline holds the last min(n, 1000)
// entries in arrival order while Processed counts all n
func TestTimeline_Property1_Bounded(t *testing.T) {
	f := func(extra uint16) bool {
		n := 1 + int(extra)%2500
		e := NewEngine(testStart)
		for i := 0; i < n; i++ {
			e.Process(solidFrame(2, 2, byte(i), byte(i), byte(i), time.Duration(i)*time.Second))
		}

		snap := e.Snapshot()
		want := n
		if want > DefaultTimelineCapacity {
			want = DefaultTimelineCapacity
		}
		if len(snap) != want {
			t.Logf("n=%d: got %d entries, want %d", n, len(snap), want)
			return false
		}
		if got := e.Processed(); got != uint64(n) {
			t.Logf("n=%d: Processed() = %d, evicted frames must still count", n, got)
			return false
		}

		first := float64(n - want)
		for i, entry := range snap {
			if entry.Time != first+float64(i) {
				t.Logf("n=%d: entry %d has time %.0f, want %.0f", n, i, entry.Time, first+float64(i))
				return false
			}
		}
		return true
	}

	if err := quick.Check(f, &quick.Config{MaxCount: 20}); err != nil {
		t.Errorf("Property violated: %v", err)
	}
}

func TestTimeline_PushAndWrap(t *testing.T) {
	tl := NewTimeline(3)
	for i := 0; i < 5; i++ {
		tl.Push(types.TimelineEntry{Time: float64(i)})
	}

	got := tl.Snapshot()
	want := []float64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Snapshot() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Time != want[i] {
			t.Errorf("Snapshot()[%d].Time = %v, want %v", i, got[i].Time, want[i])
		}
	}
	if tl.Cap() != 3 {
		t.Errorf("Cap() = %d, want 3", tl.Cap())
	}
}

func TestEngine_EmptySnapshot(t *testing.T) {
	e := NewEngine(testStart)
	snap := e.Snapshot()
	if snap == nil || len(snap) != 0 {
		t.Errorf("Snapshot() = %#v, want empty non-nil slice", snap)
	}
}

// TestEngine_Property2_Deterministic tests that analytics depend only on pixels
func TestEngine_Property2_Deterministic(t *testing.T) {
	f := func(r, g, b byte) bool {
		frame := solidFrame(8, 4, r, g, b, 0)
		a := NewEngine(testStart).Process(frame)
		c := NewEngine(testStart).Process(frame)
		return a.ColorDominance == c.ColorDominance && a.Brightness == c.Brightness
	}

	if err := quick.Check(f, nil); err != nil {
		t.Errorf("Property violated: %v", err)
	}
}

func TestEngine_ColorAndBrightness(t *testing.T) {
	tests := []struct {
		name    string
		frame   *types.Frame
		wantDom float64
		wantBri float64
	}{
		{
			name:    "black",
			frame:   solidFrame(4, 4, 0, 0, 0, 0),
			wantDom: 0,
			wantBri: 0,
		},
		{
			name:    "pure red",
			frame:   solidFrame(4, 4, 255, 0, 0, 0),
			wantDom: float64(Luma(255, 0, 0)) / 255.0,
			wantBri: float64(Luma(255, 0, 0)) / 255.0,
		},
		{
			name:    "gray",
			frame:   solidFrame(3, 3, 120, 120, 120, 0),
			wantDom: float64(Luma(120, 120, 120)) / 255.0,
			wantBri: float64(Luma(120, 120, 120)) / 255.0,
		},
		{
			// 8 pixels at 10, 8 pixels at 200: lowest bucket wins the tie
			name:    "tie resolves to lowest bucket",
			frame:   splitFrame(4, 4, 8, 200, 10),
			wantDom: float64(Luma(10, 10, 10)) / 255.0,
			wantBri: (8*float64(Luma(10, 10, 10)) + 8*float64(Luma(200, 200, 200))) / (16 * 255.0),
		},
		{
			name:    "empty buffer",
			frame:   &types.Frame{Width: 4, Height: 4, Timestamp: testStart},
			wantDom: 0,
			wantBri: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewEngine(testStart).Process(tt.frame)
			if math.Abs(got.ColorDominance-tt.wantDom) > 1e-12 {
				t.Errorf("ColorDominance = %v, want %v", got.ColorDominance, tt.wantDom)
			}
			if math.Abs(got.Brightness-tt.wantBri) > 1e-12 {
				t.Errorf("Brightness = %v, want %v", got.Brightness, tt.wantBri)
			}
		})
	}
}

func TestEngine_SceneChange(t *testing.T) {
	t.Run("first frame is never a scene change", func(t *testing.T) {
		e := NewEngine(testStart)
		if got := e.Process(solidFrame(4, 4, 255, 255, 255, 0)); got.SceneChange {
			t.Error("first frame flagged as scene change")
		}
	})

	t.Run("identical frames", func(t *testing.T) {
		e := NewEngine(testStart)
		e.Process(solidFrame(4, 4, 90, 30, 200, 0))
		if got := e.Process(solidFrame(4, 4, 90, 30, 200, time.Second)); got.SceneChange {
			t.Error("identical consecutive frames flagged as scene change")
		}
	})

	t.Run("black to white", func(t *testing.T) {
		e := NewEngine(testStart)
		e.Process(solidFrame(4, 4, 0, 0, 0, 0))
		if got := e.Process(solidFrame(4, 4, 255, 255, 255, time.Second)); !got.SceneChange {
			t.Error("full histogram shift not flagged as scene change")
		}
	})

	t.Run("small change below threshold", func(t *testing.T) {
		// 100 pixels; one pixel moves bucket: L1 distance 2 <= 10
		e := NewEngine(testStart)
		e.Process(solidFrame(10, 10, 50, 50, 50, 0))
		if got := e.Process(splitFrame(10, 10, 1, 250, 50)); got.SceneChange {
			t.Error("one-pixel change flagged as scene change")
		}
	})

	t.Run("change above threshold", func(t *testing.T) {
		// 100 pixels; six pixels move bucket: L1 distance 12 > 10
		e := NewEngine(testStart)
		e.Process(solidFrame(10, 10, 50, 50, 50, 0))
		if got := e.Process(splitFrame(10, 10, 6, 250, 50)); !got.SceneChange {
			t.Error("six-pixel change not flagged as scene change")
		}
	})
}

func TestEngine_ActivityProxy(t *testing.T) {
	e := NewEngine(testStart)

	first := e.Process(solidFrame(4, 4, 0, 0, 0, 0))
	if first.AudioLevel != 0 {
		t.Errorf("first frame AudioLevel = %v, want 0", first.AudioLevel)
	}

	second := e.Process(solidFrame(4, 4, 128, 128, 128, time.Second))
	want := float64(Luma(128, 128, 128)) / 255.0
	if math.Abs(second.AudioLevel-want) > 1e-12 {
		t.Errorf("AudioLevel = %v, want %v", second.AudioLevel, want)
	}

	third := e.Process(solidFrame(4, 4, 128, 128, 128, 2*time.Second))
	if third.AudioLevel != 0 {
		t.Errorf("unchanged frame AudioLevel = %v, want 0", third.AudioLevel)
	}
}

func TestEngine_RetainsCopy(t *testing.T) {
	e := NewEngine(testStart)
	frame := solidFrame(4, 4, 0, 0, 0, 0)
	e.Process(frame)

	// Caller reuses its buffer; the engine must compare against what it saw
	for i := range frame.Data {
		frame.Data[i] = 255
	}
	if got := e.Process(solidFrame(4, 4, 0, 0, 0, time.Second)); got.SceneChange {
		t.Error("engine diffed against caller-mutated buffer")
	}
}

func TestSidecarPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/videos/recording_20240101_120000.mkv", "/videos/recording_20240101_120000.meta.json"},
		{"/videos/recording_20240101_120000_1.mp4", "/videos/recording_20240101_120000_1.meta.json"},
		{"clip", "clip.meta.json"},
	}

	for _, tt := range tests {
		if got := SidecarPath(tt.in); got != tt.want {
			t.Errorf("SidecarPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEngine_SaveMetadataRoundTrip(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "recording_20240501_120000.mkv")

	e := NewEngine(testStart)
	e.Process(solidFrame(4, 4, 0, 0, 0, 0))
	e.Process(solidFrame(4, 4, 255, 255, 255, 500*time.Millisecond))
	e.Process(solidFrame(4, 4, 30, 60, 90, time.Second))
	want := e.Snapshot()

	path, err := e.SaveMetadata(output)
	if err != nil {
		t.Fatalf("SaveMetadata() error = %v", err)
	}
	if path != SidecarPath(output) {
		t.Errorf("SaveMetadata() path = %q, want %q", path, SidecarPath(output))
	}

	meta, err := LoadMetadata(path)
	if err != nil {
		t.Fatalf("LoadMetadata() error = %v", err)
	}
	if meta.VideoPath != output {
		t.Errorf("VideoPath = %q, want %q", meta.VideoPath, output)
	}
	if !reflect.DeepEqual(meta.Entries, want) {
		t.Errorf("Entries = %+v, want %+v", meta.Entries, want)
	}
}

func TestEngine_SaveMetadataEmpty(t *testing.T) {
	output := filepath.Join(t.TempDir(), "empty.mkv")

	path, err := NewEngine(testStart).SaveMetadata(output)
	if err != nil {
		t.Fatalf("SaveMetadata() error = %v", err)
	}
	meta, err := LoadMetadata(path)
	if err != nil {
		t.Fatalf("LoadMetadata() error = %v", err)
	}
	if len(meta.Entries) != 0 {
		t.Errorf("Entries = %d, want 0", len(meta.Entries))
	}
}

func TestSummarize(t *testing.T) {
	entries := []types.TimelineEntry{
		{Time: 1, Brightness: 0.2, AudioLevel: 0},
		{Time: 2, Brightness: 0.4, AudioLevel: 0.2, SceneChange: true},
		{Time: 4, Brightness: 0.6, AudioLevel: 0.4, SceneChange: true},
	}

	s := Summarize(entries)
	if s.Entries != 3 || s.SceneChanges != 2 {
		t.Errorf("Summarize() = %+v, want 3 entries and 2 scene changes", s)
	}
	if math.Abs(s.MeanBrightness-0.4) > 1e-9 {
		t.Errorf("MeanBrightness = %v, want 0.4", s.MeanBrightness)
	}
	if s.PeakActivity != 0.4 || s.Span != 3 {
		t.Errorf("PeakActivity = %v Span = %v, want 0.4 and 3", s.PeakActivity, s.Span)
	}
	if !reflect.DeepEqual(s.SceneTimes, []float64{2, 4}) {
		t.Errorf("SceneTimes = %v, want [2 4]", s.SceneTimes)
	}

	if empty := Summarize(nil); empty.Entries != 0 || empty.MeanBrightness != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero", empty)
	}
}
