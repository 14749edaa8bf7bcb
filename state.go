package screenrecorder

import (
	"sync"
	"time"
)

// stateOwner is the single owner of the recording state and the pause
// accounting. Every transition happens under mu, and the paused
// accumulator is updated on the transition edge so that status() is exact
// at any instant.
type stateOwner struct {
	now func() time.Time

	mu          sync.Mutex
	state       RecordingState
	startedAt   time.Time
	pausedTotal time.Duration
	pausedAt    time.Time
}

func (s *stateOwner) current() RecordingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// begin moves Stopped→Recording with a fresh clock.
func (s *stateOwner) begin(at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStopped {
		return ErrAlreadyRecording
	}
	s.state = StateRecording
	s.startedAt = at
	s.pausedTotal = 0
	s.pausedAt = time.Time{}
	return nil
}

// end moves Recording or Paused→Stopped and returns the recorded duration.
// The clock is kept until reset so late readers still see the final figure.
func (s *stateOwner) end() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		return 0, ErrNotRecording
	}
	d := s.durationLocked(s.now())
	s.state = StateStopped
	return d, nil
}

// togglePause flips Recording↔Paused and returns the new state.
func (s *stateOwner) togglePause() (RecordingState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	switch s.state {
	case StateRecording:
		s.state = StatePaused
		s.pausedAt = now
	case StatePaused:
		s.pausedTotal += now.Sub(s.pausedAt)
		s.pausedAt = time.Time{}
		s.state = StateRecording
	default:
		return StateStopped, ErrNotRecording
	}
	return s.state, nil
}

func (s *stateOwner) status() RecordingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		return RecordingStatus{}
	}
	return RecordingStatus{
		IsRecording: true,
		IsPaused:    s.state == StatePaused,
		Duration:    s.durationLocked(s.now()).Seconds(),
	}
}

func (s *stateOwner) durationLocked(now time.Time) time.Duration {
	d := now.Sub(s.startedAt) - s.pausedTotal
	if s.state == StatePaused {
		d -= now.Sub(s.pausedAt)
	}
	if d < 0 {
		d = 0
	}
	return d
}

func (s *stateOwner) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateStopped
	s.startedAt = time.Time{}
	s.pausedTotal = 0
	s.pausedAt = time.Time{}
}
