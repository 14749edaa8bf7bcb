package analytics

import "github.com/ritikZ18/screen-recoder-da/internal/types"

// DefaultTimelineCapacity bounds the analytics history kept per recording.
const DefaultTimelineCapacity = 1000

// Timeline is a fixed-capacity FIFO of timeline entries.
// When full, Push evicts the oldest entry. Not safe for concurrent use;
// Engine serializes access.
type Timeline struct {
	buf  []types.TimelineEntry
	head int // index of the oldest entry
	size int
}

// NewTimeline creates an empty timeline holding at most capacity entries.
func NewTimeline(capacity int) *Timeline {
	if capacity <= 0 {
		capacity = DefaultTimelineCapacity
	}
	return &Timeline{buf: make([]types.TimelineEntry, capacity)}
}

// Push appends an entry, evicting the oldest one at capacity.
func (t *Timeline) Push(e types.TimelineEntry) {
	if t.size < len(t.buf) {
		t.buf[(t.head+t.size)%len(t.buf)] = e
		t.size++
		return
	}
	t.buf[t.head] = e
	t.head = (t.head + 1) % len(t.buf)
}

// Len returns the number of entries held.
func (t *Timeline) Len() int { return t.size }

// Cap returns the capacity.
func (t *Timeline) Cap() int { return len(t.buf) }

// Snapshot returns a copy of the entries, oldest first.
// The result is never nil.
func (t *Timeline) Snapshot() []types.TimelineEntry {
	out := make([]types.TimelineEntry, t.size)
	for i := 0; i < t.size; i++ {
		out[i] = t.buf[(t.head+i)%len(t.buf)]
	}
	return out
}
