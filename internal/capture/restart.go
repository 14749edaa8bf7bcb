package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrRestartsExhausted is returned once a dead grabber failed to produce a
// frame after MaxRetries consecutive restarts.
var ErrRestartsExhausted = errors.New("capture: grabber restarts exhausted")

// RestartConfig paces restarts of a grabber that exited under us
// (display locked, resolution change, X server restart).
type RestartConfig struct {
	MaxRetries    int           // consecutive restarts without a frame (default: 8)
	RetryDelay    time.Duration // delay after the first restart (default: 500ms)
	MaxRetryDelay time.Duration // backoff cap (default: 10s)
}

// DefaultRestartConfig returns the default restart pacing.
func DefaultRestartConfig() RestartConfig {
	return RestartConfig{
		MaxRetries:    8,
		RetryDelay:    500 * time.Millisecond,
		MaxRetryDelay: 10 * time.Second,
	}
}

func (c RestartConfig) withDefaults() RestartConfig {
	d := DefaultRestartConfig()
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = d.MaxRetryDelay
	}
	return c
}

// Restarter decides when a dead grabber may be started again.
//
// Attempt never sleeps: the capture loop keeps polling and Attempt only
// runs the restart once the backoff delay has passed. Reset is called when
// a frame arrives, so a grabber that restarts but exits again before its
// first frame keeps backing off.
type Restarter struct {
	cfg RestartConfig
	now func() time.Time

	mu       sync.Mutex
	attempts int
	nextAt   time.Time
	total    uint64
}

// NewRestarter creates a restarter with cfg, zero fields taking defaults.
func NewRestarter(cfg RestartConfig) *Restarter {
	return &Restarter{cfg: cfg.withDefaults(), now: time.Now}
}

// Attempt runs restart when it is due. ran reports whether restart was
// called. Once MaxRetries attempts passed without Reset it returns
// ErrRestartsExhausted and stops calling restart.
func (r *Restarter) Attempt(restart func() error) (ran bool, err error) {
	r.mu.Lock()
	if r.attempts >= r.cfg.MaxRetries {
		r.mu.Unlock()
		return false, fmt.Errorf("%w (%d attempts)", ErrRestartsExhausted, r.cfg.MaxRetries)
	}
	now := r.now()
	if now.Before(r.nextAt) {
		r.mu.Unlock()
		return false, nil
	}
	r.attempts++
	r.total++
	attempt := r.attempts
	delay := backoff(attempt, r.cfg)
	r.nextAt = now.Add(delay)
	r.mu.Unlock()

	err = restart()
	if err != nil {
		slog.Error("capture: grabber restart failed",
			"attempt", attempt,
			"max_retries", r.cfg.MaxRetries,
			"next_in", delay,
			"error", err,
		)
		return true, err
	}
	slog.Warn("capture: grabber restarted",
		"attempt", attempt,
		"max_retries", r.cfg.MaxRetries,
	)
	return true, nil
}

// Reset clears the consecutive attempt count after a frame was delivered.
func (r *Restarter) Reset() {
	r.mu.Lock()
	if r.attempts > 0 {
		slog.Info("capture: grabber recovered", "attempts", r.attempts)
	}
	r.attempts = 0
	r.nextAt = time.Time{}
	r.mu.Unlock()
}

// Restarts returns the number of restarts attempted since creation.
func (r *Restarter) Restarts() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// backoff returns RetryDelay * 2^(attempt-1), capped at MaxRetryDelay.
func backoff(attempt int, cfg RestartConfig) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 30 {
		return cfg.MaxRetryDelay
	}
	delay := cfg.RetryDelay * time.Duration(1<<uint(attempt-1))
	if delay > cfg.MaxRetryDelay || delay <= 0 {
		delay = cfg.MaxRetryDelay
	}
	return delay
}
