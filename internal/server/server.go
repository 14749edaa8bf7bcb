// Package server exposes recorder status and control over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	screenrecorder "github.com/ritikZ18/screen-recoder-da"
)

// Recorder is the session manager surface served over HTTP
type Recorder interface {
	Start(ctx context.Context, source screenrecorder.SourceSelector, sink screenrecorder.EventSink) error
	Stop(ctx context.Context) (string, error)
	Pause() error
	Status() screenrecorder.RecordingStatus
	Timeline() []screenrecorder.TimelineEntry
	Metrics() screenrecorder.MetricsSnapshot
	SessionInfo() (screenrecorder.SessionInfo, bool)
	Health() screenrecorder.Health
}

// Config wires optional collaborators into the server
type Config struct {
	Addr string
	// Sink receives events of sessions started over HTTP
	Sink screenrecorder.EventSink
	// Metrics serves /metrics (Prometheus exposition)
	Metrics http.Handler
	// Events serves /ws (websocket event stream)
	Events http.Handler
	// MQTTConnected reports broker connectivity; nil when MQTT is disabled
	MQTTConnected func() bool
}

// HealthStatus is the /readiness payload
type HealthStatus struct {
	Status        string                      `json:"status"` // "healthy", "degraded"
	UptimeSeconds int64                       `json:"uptime_seconds"`
	Recorder      screenrecorder.Health       `json:"recorder"`
	Session       *screenrecorder.SessionInfo `json:"session,omitempty"`
	MQTTConnected *bool                       `json:"mqtt_connected,omitempty"`
}

// Server serves the recorder API
type Server struct {
	cfg     Config
	rec     Recorder
	started time.Time
	http    *http.Server
}

// New creates a server for rec.
func New(cfg Config, rec Recorder) *Server {
	s := &Server{cfg: cfg, rec: rec, started: time.Now()}
	s.http = &http.Server{
		Addr:        cfg.Addr,
		Handler:     s.Handler(),
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleLiveness)
	mux.HandleFunc("GET /readiness", s.handleReadiness)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /timeline", s.handleTimeline)
	mux.HandleFunc("GET /session/metrics", s.handleSessionMetrics)
	mux.HandleFunc("POST /recording/start", s.handleStart)
	mux.HandleFunc("POST /recording/stop", s.handleStop)
	mux.HandleFunc("POST /recording/pause", s.handlePause)
	if s.cfg.Metrics != nil {
		mux.Handle("GET /metrics", s.cfg.Metrics)
	}
	if s.cfg.Events != nil {
		mux.Handle("GET /ws", s.cfg.Events)
	}
	return mux
}

// Start listens in a goroutine and returns immediately.
func (s *Server) Start() {
	slog.Info("server: listening", "addr", s.cfg.Addr)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server: listen failed", "error", err)
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "alive",
		"uptime": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	h := HealthStatus{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Recorder:      s.rec.Health(),
	}
	if info, ok := s.rec.SessionInfo(); ok {
		h.Session = &info
	}
	if s.cfg.MQTTConnected != nil {
		connected := s.cfg.MQTTConnected()
		h.MQTTConnected = &connected
		if !connected {
			h.Status = "degraded"
		}
	}
	if h.Recorder.Status != "ok" {
		h.Status = "degraded"
	}

	// degraded is still ready
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rec.Status())
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rec.Timeline())
}

func (s *Server) handleSessionMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rec.Metrics())
}

// handleStart reads ?monitor=N or ?window=N.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var src screenrecorder.SourceSelector
	q := r.URL.Query()
	if v := q.Get("monitor"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid monitor %q", v))
			return
		}
		m := uint32(n)
		src.Monitor = &m
	}
	if v := q.Get("window"); v != "" {
		n, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid window %q", v))
			return
		}
		src.Window = &n
	}

	if err := s.rec.Start(r.Context(), src, s.cfg.Sink); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.rec.Status())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	path, err := s.rec.Stop(r.Context())
	if err != nil && path == "" {
		writeError(w, statusFor(err), err)
		return
	}
	resp := map[string]any{"output_path": path}
	if err != nil {
		resp["teardown_error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := s.rec.Pause(); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.rec.Status())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, screenrecorder.ErrInvalidSource):
		return http.StatusBadRequest
	case errors.Is(err, screenrecorder.ErrAlreadyRecording), errors.Is(err, screenrecorder.ErrNotRecording):
		return http.StatusConflict
	case errors.Is(err, screenrecorder.ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("server: write response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
