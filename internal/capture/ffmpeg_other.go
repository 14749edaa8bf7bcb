//go:build !linux && !windows && !darwin

package capture

import "github.com/ritikZ18/screen-recoder-da/internal/types"

func inputArgs(types.SourceSelector, Config) ([]string, error) {
	return nil, ErrNotImplemented
}
