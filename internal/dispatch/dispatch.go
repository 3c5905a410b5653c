// Package dispatch routes decoded input events to playback commands.
// The handler table is closed and known at compile time; an event name
// outside it is a first-class error value, not a lookup panic.
package dispatch

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sweeney/mediapanel/internal/player"
)

// DefaultVolumeStep is used when a volume line has no step option.
const DefaultVolumeStep = 5

// UnmappedEventError means a configured event name has no handler.
// It is fatal to that single dispatch only.
type UnmappedEventError struct {
	Event string
}

func (e *UnmappedEventError) Error() string {
	return "no input handler for event: " + e.Event
}

// ExternalCommandError wraps a failed playback-control call. The command
// is not retried; the sampling loop logs it and carries on.
type ExternalCommandError struct {
	Event string
	Err   error
}

func (e *ExternalCommandError) Error() string {
	return fmt.Sprintf("event %s: %v", e.Event, e.Err)
}

func (e *ExternalCommandError) Unwrap() error { return e.Err }

// Handler executes one semantic event against the playback surface,
// using only that line's options bag.
type Handler func(ctl player.Controller, opts map[string]string) error

// Dispatcher owns the event-name → handler table.
type Dispatcher struct {
	ctl      player.Controller
	handlers map[string]Handler
}

// New creates a Dispatcher bound to the given playback controller.
func New(ctl player.Controller) *Dispatcher {
	return &Dispatcher{
		ctl: ctl,
		handlers: map[string]Handler{
			"play_pause":  handlePlayPause,
			"play_stop":   handlePlayStop,
			"next":        handleNext,
			"prev":        handlePrev,
			"volume_up":   handleVolumeUp,
			"volume_down": handleVolumeDown,
			"playlist":    handlePlaylist,
		},
	}
}

// Dispatch routes the event to its handler. An unknown name returns
// *UnmappedEventError; a failed playback call returns
// *ExternalCommandError. Either way the error is local to this dispatch.
func (d *Dispatcher) Dispatch(event string, opts map[string]string) error {
	h, ok := d.handlers[event]
	if !ok {
		return &UnmappedEventError{Event: event}
	}
	if err := h(d.ctl, opts); err != nil {
		return &ExternalCommandError{Event: event, Err: err}
	}
	return nil
}

func handlePlayPause(ctl player.Controller, opts map[string]string) error {
	state, err := ctl.State()
	if err != nil {
		return err
	}
	if state == player.StatePlaying {
		return ctl.Pause()
	}
	return ctl.Play()
}

func handlePlayStop(ctl player.Controller, opts map[string]string) error {
	state, err := ctl.State()
	if err != nil {
		return err
	}
	if state == player.StatePlaying {
		return ctl.Stop()
	}
	return ctl.Play()
}

func handleNext(ctl player.Controller, opts map[string]string) error {
	return ctl.Next()
}

func handlePrev(ctl player.Controller, opts map[string]string) error {
	return ctl.Previous()
}

func handleVolumeUp(ctl player.Controller, opts map[string]string) error {
	return adjustVolume(ctl, stepOption(opts))
}

func handleVolumeDown(ctl player.Controller, opts map[string]string) error {
	return adjustVolume(ctl, -stepOption(opts))
}

func adjustVolume(ctl player.Controller, delta int) error {
	volume, err := ctl.Volume()
	if err != nil {
		return err
	}
	volume += delta
	if volume > 100 {
		volume = 100
	}
	if volume < 0 {
		volume = 0
	}
	return ctl.SetVolume(volume)
}

// stepOption reads the volume step from the options bag. Anything that
// isn't a positive integer falls back to the default.
func stepOption(opts map[string]string) int {
	step, err := strconv.Atoi(opts["step"])
	if err != nil || step <= 0 {
		return DefaultVolumeStep
	}
	return step
}

// handlePlaylist replaces the whole queue with the target playlist's
// tracks and starts playback. It never appends.
func handlePlaylist(ctl player.Controller, opts map[string]string) error {
	uri := opts["uri"]
	if uri == "" {
		return errors.New("playlist event requires a uri option")
	}
	tracks, err := ctl.LookupPlaylist(uri)
	if err != nil {
		return err
	}
	if err := ctl.ClearTracklist(); err != nil {
		return err
	}
	if err := ctl.AddTracks(tracks); err != nil {
		return err
	}
	return ctl.Play()
}
