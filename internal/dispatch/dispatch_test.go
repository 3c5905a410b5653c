package dispatch

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sweeney/mediapanel/internal/player"
)

func TestPlayPauseTogglesBothWays(t *testing.T) {
	fake := player.NewFake()
	d := New(fake)

	fake.PlayState = player.StatePlaying
	if err := d.Dispatch("play_pause", nil); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if fake.PlayState != player.StatePaused {
		t.Errorf("expected paused, got %s", fake.PlayState)
	}

	if err := d.Dispatch("play_pause", nil); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if fake.PlayState != player.StatePlaying {
		t.Errorf("expected playing, got %s", fake.PlayState)
	}
}

func TestPlayStop(t *testing.T) {
	fake := player.NewFake()
	d := New(fake)

	fake.PlayState = player.StatePlaying
	if err := d.Dispatch("play_stop", nil); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if fake.PlayState != player.StateStopped {
		t.Errorf("expected stopped, got %s", fake.PlayState)
	}

	if err := d.Dispatch("play_stop", nil); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if fake.PlayState != player.StatePlaying {
		t.Errorf("expected playing, got %s", fake.PlayState)
	}
}

func TestNextAndPrev(t *testing.T) {
	fake := player.NewFake()
	d := New(fake)

	if err := d.Dispatch("next", nil); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if err := d.Dispatch("prev", nil); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	want := []string{"next", "previous"}
	if !reflect.DeepEqual(fake.Calls, want) {
		t.Errorf("expected calls %v, got %v", want, fake.Calls)
	}
}

func TestVolumeUpClampsAt100(t *testing.T) {
	fake := player.NewFake()
	fake.Vol = 98
	d := New(fake)

	if err := d.Dispatch("volume_up", map[string]string{"step": "5"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if fake.Vol != 100 {
		t.Errorf("expected volume 100, got %d", fake.Vol)
	}
}

func TestVolumeDownClampsAt0(t *testing.T) {
	fake := player.NewFake()
	fake.Vol = 3
	d := New(fake)

	if err := d.Dispatch("volume_down", map[string]string{"step": "5"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if fake.Vol != 0 {
		t.Errorf("expected volume 0, got %d", fake.Vol)
	}
}

func TestVolumeStepDefaults(t *testing.T) {
	cases := []struct {
		name string
		opts map[string]string
	}{
		{"no options", nil},
		{"empty step", map[string]string{"step": ""}},
		{"garbage step", map[string]string{"step": "loud"}},
		{"negative step", map[string]string{"step": "-3"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := player.NewFake()
			fake.Vol = 50
			d := New(fake)
			if err := d.Dispatch("volume_up", tc.opts); err != nil {
				t.Fatalf("dispatch failed: %v", err)
			}
			if fake.Vol != 55 {
				t.Errorf("expected volume 55 (default step), got %d", fake.Vol)
			}
		})
	}
}

func TestPlaylistReplacesQueueAndPlays(t *testing.T) {
	fake := player.NewFake()
	fake.Tracklist = []player.Track{{URI: "old:1"}, {URI: "old:2"}}
	fake.Playlists["m3u:morning"] = []player.Track{
		{URI: "song:a"}, {URI: "song:b"}, {URI: "song:c"},
	}
	d := New(fake)

	if err := d.Dispatch("playlist", map[string]string{"uri": "m3u:morning"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	want := []player.Track{{URI: "song:a"}, {URI: "song:b"}, {URI: "song:c"}}
	if !reflect.DeepEqual(fake.Tracklist, want) {
		t.Errorf("expected tracklist %v, got %v", want, fake.Tracklist)
	}
	if fake.PlayState != player.StatePlaying {
		t.Errorf("expected playback started, got %s", fake.PlayState)
	}
}

func TestPlaylistRequiresURI(t *testing.T) {
	d := New(player.NewFake())
	if err := d.Dispatch("playlist", nil); err == nil {
		t.Fatal("expected error for missing uri")
	}
}

func TestPlaylistLookupFailureLeavesQueue(t *testing.T) {
	fake := player.NewFake()
	fake.Tracklist = []player.Track{{URI: "old:1"}}
	d := New(fake)

	err := d.Dispatch("playlist", map[string]string{"uri": "m3u:missing"})
	if err == nil {
		t.Fatal("expected error for unknown playlist")
	}
	if len(fake.Tracklist) != 1 {
		t.Error("queue should be untouched when lookup fails")
	}
}

func TestUnmappedEvent(t *testing.T) {
	d := New(player.NewFake())

	err := d.Dispatch("self_destruct", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var unmapped *UnmappedEventError
	if !errors.As(err, &unmapped) {
		t.Fatalf("expected *UnmappedEventError, got %T: %v", err, err)
	}
	if unmapped.Event != "self_destruct" {
		t.Errorf("expected event name in error, got %q", unmapped.Event)
	}
}

func TestExternalFailureWrapped(t *testing.T) {
	fake := player.NewFake()
	fake.Err = errors.New("connection refused")
	d := New(fake)

	err := d.Dispatch("next", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var external *ExternalCommandError
	if !errors.As(err, &external) {
		t.Fatalf("expected *ExternalCommandError, got %T: %v", err, err)
	}
	if !errors.Is(err, fake.Err) {
		t.Error("expected wrapped error to unwrap to the player error")
	}
}
