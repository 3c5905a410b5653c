package status

import (
	"encoding/json"
	"sort"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	LastEvent     string         `json:"last_event,omitempty"`
	LastEventAt   string         `json:"last_event_at,omitempty"`
	Dispatched    int            `json:"dispatched"`
	Counts        map[string]int `json:"event_counts"`
	Pins          []PinJSON      `json:"pins"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Config        ConfigJSON     `json:"config"`
}

// PinJSON is the JSON representation of one configured pin.
type PinJSON struct {
	Line       int    `json:"line"`
	Event      string `json:"event"`
	Active     string `json:"active"`
	Rotenc     string `json:"rotenc,omitempty"`
	DebounceMs int64  `json:"debounce_ms,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	ConfigPath string `json:"config_path"`
	PollUs     int64  `json:"poll_us"`
	MPDAddr    string `json:"mpd_addr"`
	Broker     string `json:"broker,omitempty"`
	HTTPAddr   string `json:"http_addr,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	pins := make([]PinJSON, 0, len(snap.Pins))
	for _, p := range snap.Pins {
		pins = append(pins, PinJSON{
			Line:       p.Offset,
			Event:      p.Event,
			Active:     p.Active,
			Rotenc:     p.Rotenc,
			DebounceMs: p.Debounce.Milliseconds(),
		})
	}
	sort.Slice(pins, func(i, j int) bool { return pins[i].Line < pins[j].Line })

	inner := StatusInner{
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		LastEvent:     snap.LastEvent,
		Dispatched:    snap.Dispatched,
		Counts:        snap.Counts,
		Pins:          pins,
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			ConfigPath: snap.Config.ConfigPath,
			PollUs:     snap.Config.PollUs,
			MPDAddr:    snap.Config.MPDAddr,
			Broker:     snap.Config.Broker,
			HTTPAddr:   snap.Config.HTTPAddr,
		},
	}
	if !snap.LastEventAt.IsZero() {
		inner.LastEventAt = snap.LastEventAt.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
