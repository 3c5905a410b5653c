// Package telemetry publishes decoded input events and lifecycle events
// over MQTT. Publishing is outbound-only and best-effort: a failed
// publish is logged by the caller and dropped, never retried, so the
// sampling loop is never held hostage by the broker.
package telemetry

import (
	"encoding/json"
	"time"
)

// TopicEvents is the MQTT topic for decoded input events.
const TopicEvents = "media/panel/input/events"

// TopicSystem is the MQTT topic for lifecycle events.
const TopicSystem = "media/panel/system"

// InputEvent is one decoded panel input.
type InputEvent struct {
	Timestamp time.Time
	Line      int    // GPIO offset the event originated from
	Event     string // semantic event name, e.g. "volume_up"
	Source    string // "button" or "rotary"
}

// SystemEvent is a lifecycle event (startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN"
	Reason     string // e.g. "SIGTERM" (shutdown only)
	RawPayload []byte // pre-formatted payload; if set it is sent as-is
	Retained   bool
}

// Publisher publishes panel events to MQTT.
type Publisher interface {
	// PublishInput sends a decoded input event.
	PublishInput(event InputEvent) error

	// PublishSystem sends a lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// InputPayload is the JSON envelope for input events.
type InputPayload struct {
	Input InputPayloadInner `json:"input"`
}

// InputPayloadInner contains the input event details.
type InputPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Line      int    `json:"line"`
	Event     string `json:"event"`
	Source    string `json:"source"`
}

// FormatInputPayload creates the JSON payload for an input event.
func FormatInputPayload(event InputEvent) ([]byte, error) {
	payload := InputPayload{
		Input: InputPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Line:      event.Line,
			Event:     event.Event,
			Source:    event.Source,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the JSON envelope for lifecycle events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
// If event.RawPayload is set, it is returned directly (used for full
// status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
