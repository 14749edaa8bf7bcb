package main

import (
	"fmt"
	"log/slog"
	"strconv"

	screenrecorder "github.com/ritikZ18/screen-recoder-da"
	"github.com/ritikZ18/screen-recoder-da/internal/catalog"
	"github.com/ritikZ18/screen-recoder-da/internal/config"
	"github.com/ritikZ18/screen-recoder-da/internal/telemetry"
)

// app holds the recorder and the collaborators shared by record and serve
type app struct {
	cfg     *config.Config
	mgr     *screenrecorder.Manager
	tel     *telemetry.Telemetry
	catalog *catalog.Catalog
}

func newApp(cfg *config.Config) (*app, error) {
	newCapture, err := newCaptureFactory(cfg)
	if err != nil {
		return nil, err
	}
	newEncoder, err := newEncoderFactory(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, tel: telemetry.New(cfg.InstanceID)}

	opts := screenrecorder.Options{
		OutputDir:  cfg.OutputDir,
		Extension:  cfg.Encoder.Extension,
		NewCapture: newCapture,
		NewEncoder: newEncoder,
		Observer:   a.tel,
	}
	if cfg.Catalog.Path != "" {
		if a.catalog, err = catalog.Open(cfg.Catalog.Path); err != nil {
			return nil, err
		}
		opts.Catalog = a.catalog
	}

	if a.mgr, err = screenrecorder.NewManager(opts); err != nil {
		a.close()
		return nil, fmt.Errorf("create recorder: %w", err)
	}

	slog.Info("screenrec: recorder ready",
		"instance_id", cfg.InstanceID,
		"capture", cfg.Capture.Backend,
		"encoder", cfg.Encoder.Backend,
		"resolution", fmt.Sprintf("%dx%d", cfg.Capture.Width, cfg.Capture.Height),
		"fps", cfg.Capture.FPS,
		"catalog", cfg.Catalog.Path,
	)
	return a, nil
}

func (a *app) close() {
	a.tel.Shutdown()
	if a.catalog != nil {
		if err := a.catalog.Close(); err != nil {
			slog.Warn("screenrec: catalog close failed", "error", err)
		}
	}
}

// sourceFromFlags builds a selector; negative values mean "not set".
func sourceFromFlags(monitor int64, window string) (screenrecorder.SourceSelector, error) {
	var src screenrecorder.SourceSelector
	if monitor >= 0 {
		m := uint32(monitor)
		src.Monitor = &m
	}
	if window != "" {
		w, err := strconv.ParseUint(window, 0, 64)
		if err != nil {
			return src, fmt.Errorf("invalid --window %q: %w", window, err)
		}
		src.Window = &w
	}
	if src.Monitor == nil && src.Window == nil {
		m := uint32(0)
		src.Monitor = &m
	}
	return src, nil
}
