//go:build gst && linux

package gstcapture

import (
	"fmt"

	"github.com/tinyzimmer/go-gst/gst"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// newScreenSource uses ximagesrc: the monitor index is the X screen number,
// a window is selected by its X11 id.
func newScreenSource(target types.SourceSelector) (*gst.Element, error) {
	src, err := gst.NewElement("ximagesrc")
	if err != nil {
		return nil, fmt.Errorf("failed to create ximagesrc: %w", err)
	}
	src.SetProperty("use-damage", false)
	src.SetProperty("show-pointer", true)

	switch {
	case target.Window != nil:
		src.SetProperty("xid", *target.Window)
	case target.Monitor != nil:
		src.SetProperty("screen-num", uint(*target.Monitor))
	}
	return src, nil
}
