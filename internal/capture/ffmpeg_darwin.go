//go:build darwin

package capture

import (
	"fmt"
	"strconv"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// inputArgs grabs through avfoundation screen devices. avfoundation cannot
// target a single window.
func inputArgs(target types.SourceSelector, cfg Config) ([]string, error) {
	switch {
	case target.Window != nil:
		return nil, fmt.Errorf("%w: window capture with avfoundation", ErrNotImplemented)
	case target.Monitor != nil:
		return []string{
			"-f", "avfoundation",
			"-framerate", strconv.Itoa(cfg.FPS),
			"-capture_cursor", "1",
			"-i", fmt.Sprintf("Capture screen %d:none", *target.Monitor),
		}, nil
	default:
		return nil, fmt.Errorf("capture: no target selected")
	}
}
