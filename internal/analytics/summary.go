package analytics

import "github.com/ritikZ18/screen-recoder-da/internal/types"

// Summary aggregates a timeline for reporting
type Summary struct {
	Entries        int
	SceneChanges   int
	Span           float64 // seconds between first and last entry
	MeanBrightness float64
	MeanActivity   float64
	PeakActivity   float64
	// SceneTimes lists the entry times flagged as scene changes
	SceneTimes []float64
}

// Summarize computes aggregate figures over timeline entries.
func Summarize(entries []types.TimelineEntry) Summary {
	s := Summary{Entries: len(entries)}
	if len(entries) == 0 {
		return s
	}

	var brightness, activity float64
	for _, e := range entries {
		brightness += e.Brightness
		activity += e.AudioLevel
		if e.AudioLevel > s.PeakActivity {
			s.PeakActivity = e.AudioLevel
		}
		if e.SceneChange {
			s.SceneChanges++
			s.SceneTimes = append(s.SceneTimes, e.Time)
		}
	}

	n := float64(len(entries))
	s.MeanBrightness = brightness / n
	s.MeanActivity = activity / n
	s.Span = entries[len(entries)-1].Time - entries[0].Time

	return s
}
