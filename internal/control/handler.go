// Package control accepts recorder commands over MQTT.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Command represents a control plane command
//
//	{"command": "start", "params": {"monitor": 0}}
type Command struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params,omitempty"`
}

// Response represents a command response
type Response struct {
	CommandAck string `json:"command_ack"`
	Status     string `json:"status"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Callbacks contains the recorder operations reachable from the control plane
type Callbacks struct {
	OnStart       func(monitor *uint32, window *uint64) error
	OnStop        func() (string, error)
	OnPause       func() error
	OnGetStatus   func() any
	OnGetTimeline func() any
	OnGetMetrics  func() any
}

// Topics names the subscription and the response topic
type Topics struct {
	Control   string
	Responses string
}

// publisher is the subset of mqtt.Client the handler publishes with
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Handler handles control plane commands
type Handler struct {
	client    mqtt.Client
	pub       publisher
	topics    Topics
	qos       byte
	commands  chan Command
	callbacks Callbacks
	now       func() time.Time
}

// NewHandler creates a new control plane handler
func NewHandler(client mqtt.Client, topics Topics, qos byte, callbacks Callbacks) *Handler {
	return &Handler{
		client:    client,
		pub:       client,
		topics:    topics,
		qos:       qos,
		commands:  make(chan Command, 10),
		callbacks: callbacks,
		now:       time.Now,
	}
}

// Start subscribes to the control topic and processes commands until ctx ends.
func (h *Handler) Start(ctx context.Context) error {
	slog.Info("control: subscribing", "topic", h.topics.Control, "qos", h.qos)

	token := h.client.Subscribe(h.topics.Control, h.qos, h.messageHandler)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("control: subscription timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("control: subscription failed: %w", err)
	}

	go h.processCommands(ctx)

	slog.Info("control: handler started")
	return nil
}

// Stop unsubscribes from the control topic.
func (h *Handler) Stop() error {
	if h.client != nil && h.client.IsConnected() {
		token := h.client.Unsubscribe(h.topics.Control)
		token.WaitTimeout(2 * time.Second)
	}
	slog.Info("control: handler stopped")
	return nil
}

func (h *Handler) messageHandler(_ mqtt.Client, msg mqtt.Message) {
	var cmd Command
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		slog.Error("control: failed to parse command", "error", err)
		h.sendResponse(Response{
			CommandAck: "unknown",
			Status:     "error",
			Error:      "invalid JSON",
		})
		return
	}

	slog.Info("control: command received", "command", cmd.Command)

	select {
	case h.commands <- cmd:
	default:
		slog.Warn("control: command queue full, dropping command", "command", cmd.Command)
	}
}

func (h *Handler) processCommands(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-h.commands:
			h.sendResponse(h.handleCommand(cmd))
		}
	}
}

// handleCommand executes a command and builds its response
func (h *Handler) handleCommand(cmd Command) Response {
	resp := Response{CommandAck: cmd.Command}

	fail := func(err error) Response {
		resp.Status = "error"
		resp.Error = err.Error()
		return resp
	}
	missing := func() Response {
		return fail(fmt.Errorf("%s not implemented", cmd.Command))
	}

	switch cmd.Command {
	case "start":
		if h.callbacks.OnStart == nil {
			return missing()
		}
		monitor, window, err := sourceParams(cmd.Params)
		if err != nil {
			return fail(err)
		}
		if err := h.callbacks.OnStart(monitor, window); err != nil {
			return fail(err)
		}
		resp.Status = "success"
		resp.Data = map[string]any{"is_recording": true}

	case "stop":
		if h.callbacks.OnStop == nil {
			return missing()
		}
		path, err := h.callbacks.OnStop()
		if err != nil && path == "" {
			return fail(err)
		}
		resp.Status = "success"
		data := map[string]any{"output_path": path}
		if err != nil {
			data["teardown_error"] = err.Error()
		}
		resp.Data = data

	case "pause":
		if h.callbacks.OnPause == nil {
			return missing()
		}
		if err := h.callbacks.OnPause(); err != nil {
			return fail(err)
		}
		resp.Status = "success"
		if h.callbacks.OnGetStatus != nil {
			resp.Data = h.callbacks.OnGetStatus()
		}

	case "get_status":
		if h.callbacks.OnGetStatus == nil {
			return missing()
		}
		resp.Status = "success"
		resp.Data = h.callbacks.OnGetStatus()

	case "get_timeline":
		if h.callbacks.OnGetTimeline == nil {
			return missing()
		}
		resp.Status = "success"
		resp.Data = h.callbacks.OnGetTimeline()

	case "get_metrics":
		if h.callbacks.OnGetMetrics == nil {
			return missing()
		}
		resp.Status = "success"
		resp.Data = h.callbacks.OnGetMetrics()

	default:
		return fail(fmt.Errorf("unknown command: %s", cmd.Command))
	}

	return resp
}

// sourceParams reads "monitor" or "window" from JSON params. JSON numbers
// arrive as float64.
func sourceParams(params map[string]any) (*uint32, *uint64, error) {
	var (
		monitor *uint32
		window  *uint64
	)
	if v, ok := params["monitor"]; ok {
		f, ok := v.(float64)
		if !ok || f < 0 || f != float64(uint32(f)) {
			return nil, nil, fmt.Errorf("invalid 'monitor' parameter (expected non-negative integer)")
		}
		m := uint32(f)
		monitor = &m
	}
	if v, ok := params["window"]; ok {
		f, ok := v.(float64)
		if !ok || f < 0 || f != float64(uint64(f)) {
			return nil, nil, fmt.Errorf("invalid 'window' parameter (expected non-negative integer)")
		}
		w := uint64(f)
		window = &w
	}
	return monitor, window, nil
}

func (h *Handler) sendResponse(resp Response) {
	resp.Timestamp = h.now().UTC().Format(time.RFC3339Nano)

	payload, err := json.Marshal(resp)
	if err != nil {
		slog.Error("control: failed to marshal response", "error", err)
		return
	}

	token := h.pub.Publish(h.topics.Responses, h.qos, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		slog.Error("control: response publish timeout")
		return
	}
	if err := token.Error(); err != nil {
		slog.Error("control: failed to publish response", "error", err)
		return
	}

	slog.Debug("control: response sent", "command_ack", resp.CommandAck, "status", resp.Status)
}
