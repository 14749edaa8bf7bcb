//go:build windows

package capture

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// inputArgs grabs through gdigrab. gdigrab has no monitor index, so every
// monitor maps to the full virtual desktop.
func inputArgs(target types.SourceSelector, cfg Config) ([]string, error) {
	args := []string{
		"-f", "gdigrab",
		"-framerate", strconv.Itoa(cfg.FPS),
		"-draw_mouse", "1",
	}

	switch {
	case target.Window != nil:
		args = append(args, "-i", fmt.Sprintf("hwnd=%#x", *target.Window))
	case target.Monitor != nil:
		if *target.Monitor != 0 {
			slog.Warn("capture: gdigrab records the whole desktop, monitor index ignored", "monitor", *target.Monitor)
		}
		args = append(args, "-i", "desktop")
	default:
		return nil, fmt.Errorf("capture: no target selected")
	}
	return args, nil
}
