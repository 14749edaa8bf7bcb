//go:build gst

package gstcapture

import (
	"testing"

	"github.com/ritikZ18/screen-recoder-da/internal/capture"
	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want ErrorCategory
	}{
		{"Could not open X display for reading", ErrCategoryTarget},
		{"BadWindow (invalid Window parameter)", ErrCategoryTarget},
		{"Screen recording permission denied", ErrCategoryPermission},
		{"Internal data stream error. not-negotiated", ErrCategoryNegotiation},
		{"something exploded", ErrCategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := classifyMessage(tt.msg); got != tt.want {
				t.Errorf("classifyMessage(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestClassifyError_Nil(t *testing.T) {
	if got := ClassifyError(nil); got != ErrCategoryUnknown {
		t.Errorf("ClassifyError(nil) = %v, want unknown", got)
	}
}

func TestRGBCaps(t *testing.T) {
	want := "video/x-raw,format=RGB,width=1920,height=1080,framerate=30/1"
	if got := rgbCaps(1920, 1080, 30); got != want {
		t.Errorf("rgbCaps() = %q, want %q", got, want)
	}
}

func TestSource_ErrorCounts(t *testing.T) {
	s := NewSource(types.MonitorSource(0), capture.Config{})
	for _, cat := range []ErrorCategory{ErrCategoryTarget, ErrCategoryTarget, ErrCategoryPermission, ErrCategoryUnknown} {
		s.errors.add(cat)
	}

	want := ErrorCounters{Permission: 1, Target: 2, Unknown: 1}
	if got := s.ErrorCounts(); got != want {
		t.Errorf("ErrorCounts() = %+v, want %+v", got, want)
	}
	if st := s.Stats(); st.Restarts != 0 {
		t.Errorf("Stats().Restarts = %d before any restart", st.Restarts)
	}
}
