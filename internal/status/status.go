// Package status provides a thread-safe status tracker for the
// mediapanel daemon. The HTTP server reads it; the event sink and the
// MQTT publisher write it.
package status

import (
	"sync"
	"time"
)

// Config contains daemon configuration for display.
type Config struct {
	ConfigPath string
	PollUs     int64 // inter-pass quantum, microseconds
	MPDAddr    string
	Broker     string // empty when telemetry is disabled
	HTTPAddr   string
}

// PinInfo is one row of the configured pin table, for display.
type PinInfo struct {
	Offset   int
	Event    string
	Active   string
	Rotenc   string // rotary group id, empty for buttons
	Debounce time.Duration
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type with its own copy of Counts — safe to use after
// the lock is released.
type Snapshot struct {
	StartTime time.Time
	Now       time.Time
	Config    Config
	Pins      []PinInfo

	// Counts maps event name to how many times it was dispatched.
	Counts map[string]int

	// Dispatched is the total number of dispatched events.
	Dispatched int

	LastEvent   string
	LastEventAt time.Time

	MQTTConnected bool
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time, config, and
// pin table.
func NewTracker(startTime time.Time, cfg Config, pins []PinInfo) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Pins:      pins,
			Counts:    make(map[string]int),
		},
	}
}

// RecordEvent counts one dispatched event. Called from the event sink.
func (t *Tracker) RecordEvent(event string, at time.Time) {
	t.mu.Lock()
	t.snap.Counts[event]++
	t.snap.Dispatched++
	t.snap.LastEvent = event
	t.snap.LastEventAt = at
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	counts := make(map[string]int, len(t.snap.Counts))
	for k, v := range t.snap.Counts {
		counts[k] = v
	}
	t.mu.RUnlock()
	s.Counts = counts
	s.Now = time.Now()
	return s
}
