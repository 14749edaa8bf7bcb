package screenrecorder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// outputTimeLayout formats the recording start in file names
const outputTimeLayout = "20060102_150405"

// DefaultOutputDir returns $XDG_VIDEOS_DIR, ~/Videos when it exists, or
// ~/ScreenRecordings.
func DefaultOutputDir() (string, error) {
	if dir := os.Getenv("XDG_VIDEOS_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: no home directory: %v", ErrIOSetup, err)
	}
	videos := filepath.Join(home, "Videos")
	if fi, err := os.Stat(videos); err == nil && fi.IsDir() {
		return videos, nil
	}
	return filepath.Join(home, "ScreenRecordings"), nil
}

// ResolveOutputPath creates dir and returns a path
// "recording_YYYYMMDD_HHMMSS<ext>" inside it that does not exist yet,
// appending _1, _2, ... to the name on collision.
func ResolveOutputPath(dir, ext string, at time.Time) (string, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultOutputDir(); err != nil {
			return "", err
		}
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrIOSetup, dir, err)
	}

	base := "recording_" + at.Format(outputTimeLayout)
	for i := 0; i < 10000; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		path := filepath.Join(dir, name+ext)

		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: stat %s: %v", ErrIOSetup, path, err)
		}
	}
	return "", fmt.Errorf("%w: no free file name for %s in %s", ErrIOSetup, base, dir)
}
