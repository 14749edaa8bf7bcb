package sysmetrics

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// DefaultRefreshInterval is the minimum time between two real samples
const DefaultRefreshInterval = 500 * time.Millisecond

const bytesPerMB = 1024 * 1024

// Source reads raw resource figures. CPU is a percentage, memory in bytes.
type Source interface {
	// Process returns usage of the current process
	Process() (cpuPercent float64, memBytes uint64, err error)
	// System returns machine-wide usage
	System() (cpuPercent float64, memBytes uint64, err error)
}

// Sampler caches resource samples so that the capture loop can ask every
// iteration without paying for a real sample more than twice per second.
type Sampler struct {
	src      Source
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	last    types.SystemSample
	lastAt  time.Time
	sampled bool
}

// NewSampler creates a sampler reading the current process via gopsutil.
func NewSampler() *Sampler {
	return NewSamplerWithSource(newGopsutilSource(), DefaultRefreshInterval)
}

// NewSamplerWithSource creates a sampler over a custom source.
func NewSamplerWithSource(src Source, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Sampler{
		src:      src,
		interval: interval,
		now:      time.Now,
	}
}

// Sample returns the cached sample, refreshing it when the refresh interval
// has elapsed. CPU is clamped to [0,100], memory is reported in MB.
func (s *Sampler) Sample() types.SystemSample {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.sampled && now.Sub(s.lastAt) < s.interval {
		return s.last
	}

	s.last = s.read()
	s.lastAt = now
	s.sampled = true
	return s.last
}

func (s *Sampler) read() types.SystemSample {
	cpuPct, memBytes, err := s.src.Process()
	if err == nil {
		return types.SystemSample{
			CPUPercent:    clampPercent(cpuPct),
			MemoryMB:      float64(memBytes) / bytesPerMB,
			ProcessScoped: true,
		}
	}

	slog.Debug("sysmetrics: process sample unavailable, using system-wide figures", "error", err)

	cpuPct, memBytes, err = s.src.System()
	if err != nil {
		slog.Debug("sysmetrics: system sample failed", "error", err)
		return types.SystemSample{}
	}
	return types.SystemSample{
		CPUPercent: clampPercent(cpuPct),
		MemoryMB:   float64(memBytes) / bytesPerMB,
	}
}

func clampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// gopsutilSource samples the running process through gopsutil
type gopsutilSource struct {
	proc *process.Process
}

func newGopsutilSource() *gopsutilSource {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		slog.Warn("sysmetrics: cannot locate own process, falling back to system-wide figures", "error", err)
		return &gopsutilSource{}
	}
	// Prime CPU accounting so the first real sample has a baseline
	_, _ = proc.Percent(0)
	return &gopsutilSource{proc: proc}
}

func (g *gopsutilSource) Process() (float64, uint64, error) {
	if g.proc == nil {
		return 0, 0, fmt.Errorf("sysmetrics: process handle unavailable")
	}
	pct, err := g.proc.Percent(0)
	if err != nil {
		return 0, 0, fmt.Errorf("sysmetrics: process cpu: %w", err)
	}
	info, err := g.proc.MemoryInfo()
	if err != nil {
		return 0, 0, fmt.Errorf("sysmetrics: process memory: %w", err)
	}
	return pct, info.RSS, nil
}

func (g *gopsutilSource) System() (float64, uint64, error) {
	pcts, err := cpu.Percent(0, false)
	if err != nil {
		return 0, 0, fmt.Errorf("sysmetrics: system cpu: %w", err)
	}
	var pct float64
	if len(pcts) > 0 {
		pct = pcts[0]
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, fmt.Errorf("sysmetrics: system memory: %w", err)
	}
	return pct, vm.Used, nil
}
