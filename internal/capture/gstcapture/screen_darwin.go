//go:build gst && darwin

package gstcapture

import (
	"fmt"

	"github.com/tinyzimmer/go-gst/gst"

	"github.com/ritikZ18/screen-recoder-da/internal/capture"
	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// newScreenSource uses avfvideosrc in screen mode. Window capture is not
// available through avfvideosrc.
func newScreenSource(target types.SourceSelector) (*gst.Element, error) {
	if target.Window != nil {
		return nil, fmt.Errorf("%w: window capture with avfvideosrc", capture.ErrNotImplemented)
	}

	src, err := gst.NewElement("avfvideosrc")
	if err != nil {
		return nil, fmt.Errorf("failed to create avfvideosrc: %w", err)
	}
	src.SetProperty("capture-screen", true)
	src.SetProperty("capture-screen-cursor", true)
	if target.Monitor != nil {
		src.SetProperty("device-index", int(*target.Monitor))
	}
	return src, nil
}
