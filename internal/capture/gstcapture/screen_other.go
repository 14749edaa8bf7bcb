//go:build gst && !linux && !windows && !darwin

package gstcapture

import (
	"github.com/tinyzimmer/go-gst/gst"

	"github.com/ritikZ18/screen-recoder-da/internal/capture"
	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

func newScreenSource(types.SourceSelector) (*gst.Element, error) {
	return nil, capture.ErrNotImplemented
}
