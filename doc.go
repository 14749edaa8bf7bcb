// Package screenrecorder records a monitor or window to a video file while
// deriving per-frame visual analytics.
//
// A Manager owns at most one recording session at a time. Starting a session
// initializes a CaptureSource and an Encoder, then runs a background loop
// that polls the source, feeds every frame to the analytics engine and the
// encoder, and periodically publishes status and metrics events to an
// EventSink.
//
// # Quick Start
//
//	mgr, err := screenrecorder.NewManager(screenrecorder.Options{
//	    OutputDir:  "/tmp/recordings",
//	    Extension:  ".mp4",
//	    NewCapture: captureFactory,
//	    NewEncoder: encoderFactory,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := mgr.Start(ctx, screenrecorder.MonitorSource(0), sink); err != nil {
//	    log.Fatal(err)
//	}
//
//	time.Sleep(10 * time.Second)
//	_ = mgr.Pause() // pause
//	_ = mgr.Pause() // resume
//
//	path, err := mgr.Stop(ctx)
//	// path is the video, and a ".meta.json" sidecar holds the timeline
//
// # Lifecycle
//
// The recording state is Stopped, Recording or Paused. Start moves
// Stopped→Recording, Pause toggles Recording↔Paused, Stop moves either
// active state back to Stopped. Stop joins the capture loop before the
// capture source is released and the encoder finalized, so no frame is
// ever handed to a finalized encoder.
//
// # Events
//
// The loop emits EventRecordingUpdate (RecordingStatus, at most twice per
// second) and EventMetricsUpdate (MetricsSnapshot, at most once per second).
// Start and Stop emit an EventRecordingUpdate immediately.
//
// # Analytics
//
// Each frame yields a TimelineEntry with the dominant luma bucket, mean
// brightness, a scene-change flag and an activity level. The activity level
// is the brightness change between consecutive frames; no audio is
// captured. The timeline keeps the latest 1000 entries.
package screenrecorder
