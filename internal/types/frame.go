package types

import "time"

// BytesPerPixel is the pixel stride of every Frame buffer (packed RGB24).
const BytesPerPixel = 3

// Frame represents a single captured screen frame
type Frame struct {
	// Seq is the monotonic sequence number assigned by the capture source
	Seq uint64
	// Timestamp is when the frame was grabbed
	Timestamp time.Time
	// Width in pixels
	Width int
	// Height in pixels
	Height int
	// Data contains the frame pixels (row-major RGB24, 3 bytes per pixel)
	Data []byte
	// TraceID is a unique identifier for following a frame through logs
	TraceID string
}

// Pixels returns the number of complete pixels held by Data.
//
// Width*Height is what the source advertises; a short buffer (partial read)
// is trusted over the advertised size.
func (f *Frame) Pixels() int {
	n := len(f.Data) / BytesPerPixel
	if want := f.Width * f.Height; want > 0 && want < n {
		return want
	}
	return n
}
