package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	screenrecorder "github.com/ritikZ18/screen-recoder-da"
	"github.com/ritikZ18/screen-recoder-da/internal/config"
	"github.com/ritikZ18/screen-recoder-da/internal/control"
	"github.com/ritikZ18/screen-recoder-da/internal/server"
	"github.com/ritikZ18/screen-recoder-da/internal/sink"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the recorder as a service controlled over HTTP and MQTT",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			return runService(cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides http.addr)")
	return cmd
}

func runService(cfg *config.Config) error {
	slog.Info("screenrec: starting service", "instance_id", cfg.InstanceID, "addr", cfg.HTTP.Addr)

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := sink.NewHub()
	defer hub.Close()
	events := sink.Multi{sink.Log{}, hub}

	srvCfg := server.Config{
		Addr:    cfg.HTTP.Addr,
		Metrics: a.tel.Handler(),
		Events:  hub,
	}

	var handler *control.Handler
	if cfg.MQTT.Enabled {
		emitter := sink.NewMQTT(sink.MQTTConfig{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.InstanceID,
			Topic:    cfg.MQTT.Topics.Events,
			QoS:      cfg.MQTT.QoS["events"],
		})
		if err := emitter.Connect(ctx); err != nil {
			return err
		}
		defer emitter.Disconnect()

		events = append(events, emitter)
		srvCfg.MQTTConnected = func() bool { return emitter.Stats().Connected }

		handler = control.NewHandler(emitter.Client(), control.Topics{
			Control:   cfg.MQTT.Topics.Control,
			Responses: cfg.MQTT.Topics.Responses,
		}, cfg.MQTT.QoS["control"], controlCallbacks(ctx, a.mgr, events))
		if err := handler.Start(ctx); err != nil {
			return err
		}
		defer handler.Stop()
	}
	srvCfg.Sink = events

	srv := server.New(srvCfg, a.mgr)
	srv.Start()

	<-ctx.Done()
	slog.Info("screenrec: shutting down", "timeout_s", cfg.ShutdownTimeoutS)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutS)*time.Second)
	defer cancel()

	var errs []error
	path, err := a.mgr.Stop(shutdownCtx)
	switch {
	case errors.Is(err, screenrecorder.ErrNotRecording):
	case err != nil:
		errs = append(errs, err)
	default:
		slog.Info("screenrec: active recording stopped on shutdown", "output", path)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func controlCallbacks(ctx context.Context, mgr *screenrecorder.Manager, events screenrecorder.EventSink) control.Callbacks {
	return control.Callbacks{
		OnStart: func(monitor *uint32, window *uint64) error {
			return mgr.Start(ctx, screenrecorder.SourceSelector{Monitor: monitor, Window: window}, events)
		},
		OnStop:        func() (string, error) { return mgr.Stop(ctx) },
		OnPause:       mgr.Pause,
		OnGetStatus:   func() any { return mgr.Status() },
		OnGetTimeline: func() any { return mgr.Timeline() },
		OnGetMetrics:  func() any { return mgr.Metrics() },
	}
}
