package internal

import (
	"testing"
	"time"

	"github.com/sweeney/mediapanel/internal/config"
	"github.com/sweeney/mediapanel/internal/dispatch"
	"github.com/sweeney/mediapanel/internal/gpio"
	"github.com/sweeney/mediapanel/internal/player"
	"github.com/sweeney/mediapanel/internal/poller"
	"github.com/sweeney/mediapanel/internal/telemetry"
)

// TestIntegrationFullFlow drives the whole pipeline with fakes: scripted
// GPIO levels through the sampling loop, quadrature decoding, dispatch,
// and into the fake player and telemetry publisher.
func TestIntegrationFullFlow(t *testing.T) {
	cfg, err := config.Parse([]byte(`
pins:
  "17":
    event: play_pause
    bouncetime: 30
  "22":
    event: volume_up
    rotenc_id: vol
  "23":
    event: volume_down
    rotenc_id: vol
`))
	if err != nil {
		t.Fatalf("config.Parse failed: %v", err)
	}

	reader := gpio.NewFakeReader()
	// Pass-by-pass (first sample is the seed): a button press on pass 2
	// interleaved with one full clockwise encoder detent cycle.
	reader.Script(17, true, true, false, false, true, true)
	reader.Script(22, false, false, false, true, true, false)
	reader.Script(23, false, false, true, true, false, false)

	fakePlayer := player.NewFake()
	fakePlayer.Vol = 50
	disp := dispatch.New(fakePlayer)
	pub := telemetry.NewFakePublisher()

	sink := func(line config.Line, event string) error {
		if err := disp.Dispatch(event, line.Options); err != nil {
			return err
		}
		source := "button"
		if line.Rotary() {
			source = "rotary"
		}
		return pub.PublishInput(telemetry.InputEvent{
			Timestamp: time.Now(),
			Line:      line.Offset,
			Event:     event,
			Source:    source,
		})
	}

	p := poller.New(cfg, reader, sink, poller.Options{Quantum: time.Millisecond})
	go p.Run()

	// Scripts exhaust after a handful of passes and then hold steady, so
	// a generous window makes the outcome deterministic.
	time.Sleep(250 * time.Millisecond)

	if err := p.Stop(time.Second); err != nil {
		t.Fatalf("loop did not stop: %v", err)
	}
	if err := reader.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if fakePlayer.PlayState != player.StatePlaying {
		t.Errorf("expected playback toggled to playing, got %s", fakePlayer.PlayState)
	}
	// One button press plus four clockwise pulses at the default step.
	if fakePlayer.Vol != 70 {
		t.Errorf("expected volume 70 after four volume_up pulses, got %d", fakePlayer.Vol)
	}

	if len(pub.InputEvents) != 5 {
		t.Fatalf("expected 5 published input events, got %d: %+v", len(pub.InputEvents), pub.InputEvents)
	}
	buttons, rotaries := 0, 0
	for _, ev := range pub.InputEvents {
		switch ev.Source {
		case "button":
			buttons++
		case "rotary":
			rotaries++
		}
	}
	if buttons != 1 || rotaries != 4 {
		t.Errorf("expected 1 button and 4 rotary events, got %d and %d", buttons, rotaries)
	}

	if reader.CloseCount != 1 {
		t.Errorf("expected lines released exactly once, got %d", reader.CloseCount)
	}
}

// TestIntegrationUnmappedEventKeepsPolling ensures a misconfigured event
// name drops that dispatch but later passes still deliver events.
func TestIntegrationUnmappedEventKeepsPolling(t *testing.T) {
	cfg, err := config.Parse([]byte(`
pins:
  "4":
    event: warp_drive
    bouncetime: 10
  "5":
    event: next
    bouncetime: 10
`))
	if err != nil {
		t.Fatalf("config.Parse failed: %v", err)
	}

	reader := gpio.NewFakeReader()
	// Line 4 presses first; line 5 presses on a later pass.
	reader.Script(4, true, true, false, false, false)
	reader.Script(5, true, true, true, true, false)

	fakePlayer := player.NewFake()
	disp := dispatch.New(fakePlayer)

	sink := func(line config.Line, event string) error {
		return disp.Dispatch(event, line.Options)
	}

	p := poller.New(cfg, reader, sink, poller.Options{Quantum: time.Millisecond})
	go p.Run()
	time.Sleep(100 * time.Millisecond)
	if err := p.Stop(time.Second); err != nil {
		t.Fatalf("loop did not stop: %v", err)
	}

	// The unmapped warp_drive was dropped; next still went through.
	want := []string{"next"}
	if len(fakePlayer.Calls) != 1 || fakePlayer.Calls[0] != want[0] {
		t.Errorf("expected calls %v, got %v", want, fakePlayer.Calls)
	}
}
