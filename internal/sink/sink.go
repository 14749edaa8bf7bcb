// Package sink delivers recorder events to logs, MQTT and websocket clients.
package sink

import (
	"encoding/json"
	"log/slog"
	"time"
)

// Emitter receives recorder events. Emit must not block.
type Emitter interface {
	Emit(event string, payload any)
}

// Envelope is the wire form of an event
type Envelope struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

func encode(event string, payload any) ([]byte, error) {
	return json.Marshal(Envelope{
		Event:     event,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

// Multi fans an event out to every emitter in order
type Multi []Emitter

func (m Multi) Emit(event string, payload any) {
	for _, e := range m {
		if e != nil {
			e.Emit(event, payload)
		}
	}
}

// Log writes events to slog at debug level
type Log struct {
	Logger *slog.Logger
}

func (l Log) Emit(event string, payload any) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("sink: event", "event", event, "payload", payload)
}
