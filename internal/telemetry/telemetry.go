// Package telemetry exposes recorder metrics and lifecycle events to Prometheus.
package telemetry

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// Telemetry owns a private Prometheus registry. It is constructed once by
// the binary and passed to the recorder; nothing registers globally.
type Telemetry struct {
	registry *prometheus.Registry

	captureFPS    prometheus.Gauge
	encodeFPS     prometheus.Gauge
	droppedFrames prometheus.Gauge
	cpuPercent    prometheus.Gauge
	memoryMB      prometheus.Gauge
	encodeLatency prometheus.Histogram
	events        *prometheus.CounterVec

	mu     sync.Mutex
	counts map[string]uint64
	closed bool
}

// New creates the registry with process and Go runtime collectors.
func New(instanceID string) *Telemetry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	labels := prometheus.Labels{"instance": instanceID}
	factory := promauto.With(reg)

	t := &Telemetry{
		registry: reg,
		counts:   make(map[string]uint64),
	}

	t.captureFPS = factory.NewGauge(prometheus.GaugeOpts{
		Name:        "screenrec_capture_fps",
		Help:        "Frame arrival rate over the last 60 frames",
		ConstLabels: labels,
	})
	t.encodeFPS = factory.NewGauge(prometheus.GaugeOpts{
		Name:        "screenrec_encode_fps",
		Help:        "Encoder throughput derived from average latency",
		ConstLabels: labels,
	})
	t.droppedFrames = factory.NewGauge(prometheus.GaugeOpts{
		Name:        "screenrec_dropped_frames",
		Help:        "Estimated frames missed in the current recording",
		ConstLabels: labels,
	})
	t.cpuPercent = factory.NewGauge(prometheus.GaugeOpts{
		Name:        "screenrec_cpu_usage_percent",
		Help:        "Recorder process CPU usage",
		ConstLabels: labels,
	})
	t.memoryMB = factory.NewGauge(prometheus.GaugeOpts{
		Name:        "screenrec_memory_usage_mb",
		Help:        "Recorder process resident memory",
		ConstLabels: labels,
	})
	t.encodeLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Name:        "screenrec_encode_latency_ms",
		Help:        "Average per-frame encode latency, sampled once per second",
		ConstLabels: labels,
		Buckets:     []float64{1, 2, 5, 10, 16, 33, 50, 100, 250},
	})
	t.events = factory.NewCounterVec(prometheus.CounterOpts{
		Name:        "screenrec_events_total",
		Help:        "Recorder lifecycle events",
		ConstLabels: labels,
	}, []string{"event"})

	slog.Info("telemetry: initialized", "instance", instanceID)
	return t
}

// RecordEvent counts a lifecycle event.
func (t *Telemetry) RecordEvent(name string) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.counts[name]++
	t.mu.Unlock()

	t.events.WithLabelValues(name).Inc()
	slog.Info("telemetry: event", "event", name)
}

// ObserveMetrics publishes a merged metrics snapshot.
func (t *Telemetry) ObserveMetrics(m types.MetricsSnapshot) {
	t.captureFPS.Set(m.CaptureFPS)
	t.encodeFPS.Set(m.EncodeFPS)
	t.droppedFrames.Set(float64(m.DroppedFrames))
	t.cpuPercent.Set(m.CPUUsagePercent)
	t.memoryMB.Set(m.MemoryUsageMB)
	if m.EncodeLatencyMS > 0 {
		t.encodeLatency.Observe(m.EncodeLatencyMS)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{Registry: t.registry})
}

// Registry returns the underlying registry.
func (t *Telemetry) Registry() *prometheus.Registry { return t.registry }

// EventCounts returns a copy of the lifecycle event counters.
func (t *Telemetry) EventCounts() map[string]uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]uint64, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}

// Shutdown logs the event totals. Later events are ignored.
func (t *Telemetry) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true

	attrs := make([]any, 0, 2*len(t.counts))
	for k, v := range t.counts {
		attrs = append(attrs, k, v)
	}
	slog.Info("telemetry: shutdown", attrs...)
}
