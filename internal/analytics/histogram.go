package analytics

import (
	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// Histogram counts pixels per 8-bit luma value
type Histogram [256]uint32

// Luma returns the 8-bit perceptual brightness of an RGB pixel.
// The weighted sum is truncated, not rounded.
func Luma(r, g, b byte) uint8 {
	return uint8(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
}

// lumaStats builds the luma histogram of a packed RGB24 buffer and returns it
// together with the luma sum. Only the first pixels*3 bytes are read.
func lumaStats(data []byte, pixels int) (Histogram, uint64) {
	var hist Histogram
	var sum uint64

	end := pixels * types.BytesPerPixel
	for i := 0; i+2 < end; i += types.BytesPerPixel {
		y := Luma(data[i], data[i+1], data[i+2])
		hist[y]++
		sum += uint64(y)
	}

	return hist, sum
}

// Dominant returns the bucket with the highest count.
// Ties resolve to the lowest bucket index.
func (h *Histogram) Dominant() int {
	best := 0
	for i := 1; i < len(h); i++ {
		if h[i] > h[best] {
			best = i
		}
	}
	return best
}

// Distance returns the L1 distance between two histograms.
func (h *Histogram) Distance(other *Histogram) uint64 {
	var d uint64
	for i := range h {
		a, b := h[i], other[i]
		if a > b {
			d += uint64(a - b)
		} else {
			d += uint64(b - a)
		}
	}
	return d
}
