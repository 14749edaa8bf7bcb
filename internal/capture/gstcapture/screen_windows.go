//go:build gst && windows

package gstcapture

import (
	"fmt"

	"github.com/tinyzimmer/go-gst/gst"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// newScreenSource uses d3d11screencapturesrc (Desktop Duplication or WGC).
func newScreenSource(target types.SourceSelector) (*gst.Element, error) {
	src, err := gst.NewElement("d3d11screencapturesrc")
	if err != nil {
		return nil, fmt.Errorf("failed to create d3d11screencapturesrc: %w", err)
	}
	src.SetProperty("show-cursor", true)

	switch {
	case target.Window != nil:
		src.SetProperty("window-handle", *target.Window)
	case target.Monitor != nil:
		src.SetProperty("monitor-index", int(*target.Monitor))
	}
	return src, nil
}
