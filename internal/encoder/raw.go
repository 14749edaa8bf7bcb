package encoder

import (
	"bufio"
	"fmt"
	"os"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// RawExtension is the file extension of headerless RGB24 output
const RawExtension = ".rgb"

// RawBackend appends frames as headerless RGB24 to a file. Useful where no
// encoder is installed; the result plays with
// `ffplay -f rawvideo -pixel_format rgb24 -video_size WxH file.rgb`.
type RawBackend struct {
	path string
	file *os.File
	w    *bufio.Writer
	size int
}

// NewRawBackend creates a raw backend writing to path.
func NewRawBackend(path string) *RawBackend {
	return &RawBackend{path: path}
}

func (r *RawBackend) Name() string { return "raw" }

func (r *RawBackend) Open(width, height int) error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	r.file = f
	r.w = bufio.NewWriterSize(f, 1<<20)
	r.size = width * height * types.BytesPerPixel
	return nil
}

func (r *RawBackend) Write(frame *types.Frame) error {
	if len(frame.Data) < r.size {
		return fmt.Errorf("short frame buffer: %d bytes, want %d", len(frame.Data), r.size)
	}
	_, err := r.w.Write(frame.Data[:r.size])
	return err
}

func (r *RawBackend) Close() error {
	flushErr := r.w.Flush()
	closeErr := r.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
