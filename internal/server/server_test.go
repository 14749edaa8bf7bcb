package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	screenrecorder "github.com/ritikZ18/screen-recoder-da"
)

type fakeRecorder struct {
	recording bool
	paused    bool
	started   screenrecorder.SourceSelector
	health    screenrecorder.Health
}

func (f *fakeRecorder) Start(_ context.Context, src screenrecorder.SourceSelector, _ screenrecorder.EventSink) error {
	if !src.Valid() {
		return screenrecorder.ErrInvalidSource
	}
	if f.recording {
		return screenrecorder.ErrAlreadyRecording
	}
	f.recording = true
	f.started = src
	return nil
}

func (f *fakeRecorder) Stop(context.Context) (string, error) {
	if !f.recording {
		return "", screenrecorder.ErrNotRecording
	}
	f.recording = false
	return "/v/recording.mp4", nil
}

func (f *fakeRecorder) Pause() error {
	if !f.recording {
		return screenrecorder.ErrNotRecording
	}
	f.paused = !f.paused
	return nil
}

func (f *fakeRecorder) Status() screenrecorder.RecordingStatus {
	return screenrecorder.RecordingStatus{IsRecording: f.recording, IsPaused: f.paused, Duration: 1.5}
}

func (f *fakeRecorder) Timeline() []screenrecorder.TimelineEntry {
	return []screenrecorder.TimelineEntry{{Time: 0.5, Brightness: 0.25, SceneChange: true}}
}

func (f *fakeRecorder) Metrics() screenrecorder.MetricsSnapshot {
	return screenrecorder.MetricsSnapshot{CaptureFPS: 30}
}

func (f *fakeRecorder) SessionInfo() (screenrecorder.SessionInfo, bool) {
	if !f.recording {
		return screenrecorder.SessionInfo{}, false
	}
	return screenrecorder.SessionInfo{ID: "s1", StateName: "recording"}, true
}

func (f *fakeRecorder) Health() screenrecorder.Health {
	if f.health.Status == "" {
		return screenrecorder.Health{Status: "ok", State: "stopped"}
	}
	return f.health
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestServer_Lifecycle(t *testing.T) {
	rec := &fakeRecorder{}
	h := New(Config{}, rec).Handler()

	tests := []struct {
		method, target string
		wantCode       int
	}{
		{"POST", "/recording/stop", http.StatusConflict},
		{"POST", "/recording/start", http.StatusBadRequest},
		{"POST", "/recording/start?monitor=x", http.StatusBadRequest},
		{"POST", "/recording/start?window=0x2a", http.StatusOK},
		{"POST", "/recording/start?monitor=0", http.StatusConflict},
		{"POST", "/recording/pause", http.StatusOK},
		{"POST", "/recording/stop", http.StatusOK},
		{"POST", "/recording/pause", http.StatusConflict},
	}

	for _, tt := range tests {
		if got := do(t, h, tt.method, tt.target); got.Code != tt.wantCode {
			t.Errorf("%s %s = %d (%s), want %d", tt.method, tt.target, got.Code, got.Body, tt.wantCode)
		}
	}

	if rec.started.Window == nil || *rec.started.Window != 0x2a {
		t.Errorf("started source = %v, want window 0x2a", rec.started)
	}
}

func TestServer_Status(t *testing.T) {
	rec := &fakeRecorder{recording: true}
	h := New(Config{}, rec).Handler()

	resp := do(t, h, "GET", "/status")
	var st map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &st); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if st["is_recording"] != true || st["is_paused"] != false || st["duration"] != 1.5 {
		t.Errorf("/status = %v", st)
	}

	resp = do(t, h, "GET", "/timeline")
	var tl []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &tl); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(tl) != 1 || tl[0]["sceneChange"] != true {
		t.Errorf("/timeline = %v", tl)
	}

	resp = do(t, h, "GET", "/session/metrics")
	var m map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if m["capture_fps"] != float64(30) {
		t.Errorf("/session/metrics = %v", m)
	}
}

func TestServer_Readiness(t *testing.T) {
	connected := false
	rec := &fakeRecorder{recording: true}
	h := New(Config{MQTTConnected: func() bool { return connected }}, rec).Handler()

	var hs HealthStatus
	resp := do(t, h, "GET", "/readiness")
	if err := json.Unmarshal(resp.Body.Bytes(), &hs); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if resp.Code != http.StatusOK || hs.Status != "degraded" || hs.Session == nil {
		t.Errorf("/readiness = %d %+v, want 200 degraded with session", resp.Code, hs)
	}

	connected = true
	resp = do(t, h, "GET", "/readiness")
	hs = HealthStatus{}
	_ = json.Unmarshal(resp.Body.Bytes(), &hs)
	if hs.Status != "healthy" {
		t.Errorf("/readiness status = %q, want healthy", hs.Status)
	}

	rec.health = screenrecorder.Health{Status: "degraded", Error: "disk full"}
	resp = do(t, h, "GET", "/readiness")
	hs = HealthStatus{}
	_ = json.Unmarshal(resp.Body.Bytes(), &hs)
	if hs.Status != "degraded" || hs.Recorder.Error != "disk full" {
		t.Errorf("/readiness = %+v, want degraded recorder", hs)
	}
}

func TestServer_OptionalRoutes(t *testing.T) {
	h := New(Config{}, &fakeRecorder{}).Handler()
	if got := do(t, h, "GET", "/metrics").Code; got != http.StatusNotFound {
		t.Errorf("/metrics without handler = %d, want 404", got)
	}

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h = New(Config{Metrics: metrics}, &fakeRecorder{}).Handler()
	if got := do(t, h, "GET", "/metrics").Code; got != http.StatusTeapot {
		t.Errorf("/metrics = %d, want 418", got)
	}
	if got := do(t, h, "GET", "/health").Code; got != http.StatusOK {
		t.Errorf("/health = %d, want 200", got)
	}
}
