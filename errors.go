package screenrecorder

import (
	"errors"

	"github.com/ritikZ18/screen-recoder-da/internal/capture"
)

var (
	// ErrAlreadyRecording is returned by Start when a session exists
	ErrAlreadyRecording = errors.New("screen-recorder: already recording")

	// ErrNotRecording is returned by Stop and Pause without a session
	ErrNotRecording = errors.New("screen-recorder: not recording")

	// ErrInvalidSource is returned by Start unless exactly one of monitor or window is set
	ErrInvalidSource = errors.New("screen-recorder: exactly one of monitor or window must be set")

	// ErrIOSetup is returned by Start when the output location cannot be prepared
	ErrIOSetup = errors.New("screen-recorder: output setup failed")

	// ErrNotImplemented is returned by capture backends on unsupported platforms
	ErrNotImplemented = capture.ErrNotImplemented
)
