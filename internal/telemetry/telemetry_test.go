package telemetry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestFormatInputPayload(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	payload, err := FormatInputPayload(InputEvent{
		Timestamp: ts,
		Line:      17,
		Event:     "volume_up",
		Source:    "rotary",
	})
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}

	var decoded InputPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.Input.Line != 17 {
		t.Errorf("expected line 17, got %d", decoded.Input.Line)
	}
	if decoded.Input.Event != "volume_up" {
		t.Errorf("expected event volume_up, got %q", decoded.Input.Event)
	}
	if decoded.Input.Source != "rotary" {
		t.Errorf("expected source rotary, got %q", decoded.Input.Source)
	}
	if decoded.Input.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("unexpected timestamp %q", decoded.Input.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: ts,
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	})
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}

	var decoded SystemPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.System.Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN, got %q", decoded.System.Event)
	}
	if decoded.System.Reason != "SIGTERM" {
		t.Errorf("expected SIGTERM, got %q", decoded.System.Reason)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{}}`)
	payload, err := FormatSystemPayload(SystemEvent{RawPayload: raw})
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()

	if err := f.PublishInput(InputEvent{Line: 4, Event: "next"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err != nil {
		t.Fatalf("publish system failed: %v", err)
	}

	if len(f.InputEvents) != 1 || f.InputEvents[0].Event != "next" {
		t.Errorf("unexpected input events %v", f.InputEvents)
	}
	if len(f.SystemEvents) != 1 || f.SystemEvents[0].Event != "STARTUP" {
		t.Errorf("unexpected system events %v", f.SystemEvents)
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")

	if err := f.PublishInput(InputEvent{}); err == nil {
		t.Error("expected injected error")
	}
	if len(f.InputEvents) != 0 {
		t.Error("failed publish must not be recorded")
	}
}
