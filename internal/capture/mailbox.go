package capture

import (
	"sync"
	"sync/atomic"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// Mailbox holds the most recent frame produced by a background reader.
//
// Put never blocks: a newer frame replaces an unconsumed one and the
// replaced frame is counted as dropped. Take never blocks either and returns
// nil when nothing new arrived since the last Take.
type Mailbox struct {
	mu    sync.Mutex
	frame *types.Frame

	put     uint64
	dropped uint64
}

func (m *Mailbox) Put(f *types.Frame) {
	m.mu.Lock()
	if m.frame != nil {
		atomic.AddUint64(&m.dropped, 1)
	}
	m.frame = f
	m.mu.Unlock()
	atomic.AddUint64(&m.put, 1)
}

func (m *Mailbox) Take() *types.Frame {
	m.mu.Lock()
	f := m.frame
	m.frame = nil
	m.mu.Unlock()
	return f
}

// Stats returns frames published and frames overwritten before consumption.
func (m *Mailbox) Stats() (put, dropped uint64) {
	return atomic.LoadUint64(&m.put), atomic.LoadUint64(&m.dropped)
}
