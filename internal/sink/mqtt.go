package sink

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig contains broker settings for the MQTT emitter
type MQTTConfig struct {
	Broker   string // tcp://host:1883
	ClientID string
	// Topic is the events topic; each event is published to Topic/<event>
	Topic string
	QoS   byte
}

// MQTT publishes events to an MQTT broker
type MQTT struct {
	cfg    MQTTConfig
	client mqtt.Client

	mu        sync.RWMutex
	published map[string]uint64 // count per topic
	errors    uint64
	connected bool
}

// MQTTStats contains emitter statistics
type MQTTStats struct {
	Connected bool
	Published map[string]uint64
	Errors    uint64
}

// NewMQTT creates an MQTT emitter. Call Connect before emitting.
func NewMQTT(cfg MQTTConfig) *MQTT {
	return &MQTT{
		cfg:       cfg,
		published: make(map[string]uint64),
	}
}

// Connect establishes the broker connection with automatic reconnection.
func (e *MQTT) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(e.cfg.Broker)
	opts.SetClientID(e.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		e.setConnected(true)
		slog.Info("sink: mqtt connection established",
			"broker", e.cfg.Broker,
			"client_id", e.cfg.ClientID,
		)
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		e.setConnected(false)
		slog.Warn("sink: mqtt connection lost, will auto-reconnect",
			"error", err,
			"broker", e.cfg.Broker,
		)
	}

	e.client = mqtt.NewClient(opts)

	slog.Info("sink: connecting to mqtt broker", "broker", e.cfg.Broker)

	token := e.client.Connect()
	select {
	case <-token.Done():
	case <-time.After(5 * time.Second):
		return fmt.Errorf("sink: mqtt connection timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("sink: mqtt connection failed: %w", err)
	}

	e.setConnected(true)
	return nil
}

// Client returns the underlying client for the control plane.
func (e *MQTT) Client() mqtt.Client { return e.client }

// Topic returns the topic an event is published to.
func (e *MQTT) Topic(event string) string {
	return fmt.Sprintf("%s/%s", e.cfg.Topic, event)
}

// Emit publishes the event without waiting for the broker acknowledgement.
// Failures are counted and logged.
func (e *MQTT) Emit(event string, payload any) {
	if !e.isConnected() {
		e.countError()
		return
	}

	data, err := encode(event, payload)
	if err != nil {
		e.countError()
		slog.Error("sink: failed to marshal event", "event", event, "error", err)
		return
	}

	topic := e.Topic(event)
	token := e.client.Publish(topic, e.cfg.QoS, false, data)

	go func() {
		if !token.WaitTimeout(2 * time.Second) {
			e.countError()
			slog.Warn("sink: mqtt publish timeout", "topic", topic)
			return
		}
		if err := token.Error(); err != nil {
			e.countError()
			slog.Warn("sink: mqtt publish failed", "topic", topic, "error", err)
			return
		}
		e.mu.Lock()
		e.published[topic]++
		e.mu.Unlock()
	}()
}

// Disconnect closes the broker connection
func (e *MQTT) Disconnect() {
	if e.client != nil && e.client.IsConnected() {
		e.client.Disconnect(250)
		slog.Info("sink: mqtt disconnected")
	}
	e.setConnected(false)
}

// Stats returns emitter statistics
func (e *MQTT) Stats() MQTTStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	published := make(map[string]uint64, len(e.published))
	for k, v := range e.published {
		published[k] = v
	}
	return MQTTStats{
		Connected: e.connected,
		Published: published,
		Errors:    e.errors,
	}
}

func (e *MQTT) setConnected(v bool) {
	e.mu.Lock()
	e.connected = v
	e.mu.Unlock()
}

func (e *MQTT) isConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected && e.client != nil
}

func (e *MQTT) countError() {
	e.mu.Lock()
	e.errors++
	e.mu.Unlock()
}
