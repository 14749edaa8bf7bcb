//go:build gst

package gstcapture

import (
	"strings"

	"github.com/tinyzimmer/go-gst/gst"
)

// ErrorCategory classifies GStreamer bus errors for logs and metrics
type ErrorCategory int

const (
	// ErrCategoryPermission indicates the OS refused screen access
	ErrCategoryPermission ErrorCategory = iota
	// ErrCategoryTarget indicates the display or window is gone or invalid
	ErrCategoryTarget
	// ErrCategoryNegotiation indicates caps/format negotiation failures
	ErrCategoryNegotiation
	// ErrCategoryUnknown indicates unclassified errors
	ErrCategoryUnknown
)

func (e ErrorCategory) String() string {
	switch e {
	case ErrCategoryPermission:
		return "permission"
	case ErrCategoryTarget:
		return "target"
	case ErrCategoryNegotiation:
		return "negotiation"
	default:
		return "unknown"
	}
}

// ClassifyError categorizes a GStreamer error by message heuristics.
// go-gst's GError does not expose the error domain.
func ClassifyError(gerr *gst.GError) ErrorCategory {
	if gerr == nil {
		return ErrCategoryUnknown
	}
	return classifyMessage(gerr.Error() + " " + gerr.DebugString())
}

func classifyMessage(msg string) ErrorCategory {
	msg = strings.ToLower(msg)

	switch {
	case containsAny(msg, "permission", "denied", "not authorized", "not permitted", "screen recording"):
		return ErrCategoryPermission
	case containsAny(msg, "not-negotiated", "negotiat", "caps", "format"):
		return ErrCategoryNegotiation
	case containsAny(msg, "cannot open display", "display", "badwindow", "bad window", "xid", "window", "monitor"):
		return ErrCategoryTarget
	default:
		return ErrCategoryUnknown
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
