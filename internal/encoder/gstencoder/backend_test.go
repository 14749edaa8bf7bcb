//go:build gst

package gstencoder

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	if cfg.BitrateKbps != 4000 {
		t.Errorf("BitrateKbps = %d, want 4000", cfg.BitrateKbps)
	}
	if cfg.KeyframeInterval != 60 {
		t.Errorf("KeyframeInterval = %d, want 60", cfg.KeyframeInterval)
	}
	if cfg.FPS != 30 {
		t.Errorf("FPS = %d, want 30", cfg.FPS)
	}
	if cfg.EOSTimeout != 10*time.Second {
		t.Errorf("EOSTimeout = %v, want 10s", cfg.EOSTimeout)
	}
}

func TestCloseWithoutOpen(t *testing.T) {
	b := NewBackend(t.TempDir()+"/out.mkv", Config{})
	if err := b.Close(); err != nil {
		t.Errorf("Close() before Open = %v, want nil", err)
	}
}
