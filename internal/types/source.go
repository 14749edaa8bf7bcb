package types

import "fmt"

// SourceSelector identifies what to record: exactly one of Monitor or
// Window must be set.
type SourceSelector struct {
	// Monitor is a display index
	Monitor *uint32 `json:"monitor,omitempty"`
	// Window is a platform window handle (X11 window id, HWND, CGWindowID)
	Window *uint64 `json:"window,omitempty"`
}

// MonitorSource selects a monitor by index.
func MonitorSource(id uint32) SourceSelector {
	return SourceSelector{Monitor: &id}
}

// WindowSource selects a window by handle.
func WindowSource(id uint64) SourceSelector {
	return SourceSelector{Window: &id}
}

// Valid reports whether exactly one target is set.
func (s SourceSelector) Valid() bool {
	return (s.Monitor == nil) != (s.Window == nil)
}

func (s SourceSelector) String() string {
	switch {
	case s.Monitor != nil && s.Window != nil:
		return fmt.Sprintf("monitor:%d+window:%#x", *s.Monitor, *s.Window)
	case s.Monitor != nil:
		return fmt.Sprintf("monitor:%d", *s.Monitor)
	case s.Window != nil:
		return fmt.Sprintf("window:%#x", *s.Window)
	default:
		return "none"
	}
}
