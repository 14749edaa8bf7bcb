//go:build linux

package capture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// inputArgs grabs through x11grab. A monitor index selects the X screen of
// the configured display; a window is grabbed by its X11 id.
func inputArgs(target types.SourceSelector, cfg Config) ([]string, error) {
	args := []string{
		"-f", "x11grab",
		"-framerate", strconv.Itoa(cfg.FPS),
		"-draw_mouse", "1",
	}

	switch {
	case target.Window != nil:
		args = append(args, "-window_id", fmt.Sprintf("%#x", *target.Window), "-i", cfg.Display)
	case target.Monitor != nil:
		host := cfg.Display
		if i := strings.LastIndex(host, "."); i > strings.LastIndex(host, ":") {
			host = host[:i]
		}
		args = append(args, "-i", fmt.Sprintf("%s.%d", host, *target.Monitor))
	default:
		return nil, fmt.Errorf("capture: no target selected")
	}
	return args, nil
}
