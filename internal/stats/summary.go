package stats

import (
	"math"
	"time"
)

const (
	// fpsStabilityThreshold is the maximum instantaneous FPS standard deviation
	// as a fraction of mean FPS. 30 FPS mean is stable below 4.5 FPS stddev.
	fpsStabilityThreshold = 0.15

	// jitterStabilityThreshold is the maximum mean jitter as a fraction of the
	// expected interval. 30 FPS (33ms) is stable below 6.6ms mean jitter.
	jitterStabilityThreshold = 0.20
)

// FPSStats describes the timing quality of a run of frame arrivals
type FPSStats struct {
	Frames    int
	Span      time.Duration
	FPSMean   float64
	FPSStdDev float64
	FPSMin    float64
	FPSMax    float64
	// Jitter values are seconds of deviation from the mean interval
	JitterMean float64
	JitterMax  float64
	IsStable   bool
}

// Summarize computes FPS statistics over arrival instants (oldest first).
//
// Stability: instantaneous FPS stddev < 15% of mean AND mean jitter < 20%
// of the expected interval. Fewer than three arrivals are never stable.
func Summarize(arrivals []time.Time) FPSStats {
	n := len(arrivals)
	s := FPSStats{Frames: n}
	if n < 2 {
		return s
	}

	s.Span = arrivals[n-1].Sub(arrivals[0])
	if s.Span <= 0 {
		return s
	}
	s.FPSMean = float64(n-1) / s.Span.Seconds()

	instantaneous := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		if interval := arrivals[i].Sub(arrivals[i-1]).Seconds(); interval > 0 {
			instantaneous = append(instantaneous, 1.0/interval)
		}
	}
	if len(instantaneous) == 0 {
		return s
	}

	s.FPSMin, s.FPSMax = instantaneous[0], instantaneous[0]
	var sumSquares float64
	for _, fps := range instantaneous {
		s.FPSMin = math.Min(s.FPSMin, fps)
		s.FPSMax = math.Max(s.FPSMax, fps)
		diff := fps - s.FPSMean
		sumSquares += diff * diff
	}
	s.FPSStdDev = math.Sqrt(sumSquares / float64(len(instantaneous)))

	expected := 1.0 / s.FPSMean
	var jitterSum float64
	for i := 1; i < n; i++ {
		j := math.Abs(arrivals[i].Sub(arrivals[i-1]).Seconds() - expected)
		jitterSum += j
		s.JitterMax = math.Max(s.JitterMax, j)
	}
	s.JitterMean = jitterSum / float64(n-1)

	s.IsStable = n >= 3 &&
		s.FPSStdDev < s.FPSMean*fpsStabilityThreshold &&
		s.JitterMean < expected*jitterStabilityThreshold

	return s
}
