// Package player wraps the media player the panel controls. The real
// implementation talks to MPD; the fake records calls for tests.
package player

// PlaybackState mirrors the player's transport state.
type PlaybackState string

const (
	StatePlaying PlaybackState = "play"
	StatePaused  PlaybackState = "pause"
	StateStopped PlaybackState = "stop"
)

// Track is one entry in a playlist or the queue.
type Track struct {
	URI   string
	Title string
}

// Controller is the playback-control surface the event handlers call
// into. Every call may block on the network and may fail; handlers treat
// failures as dispatch-local errors, never retried.
type Controller interface {
	State() (PlaybackState, error)
	Play() error
	Pause() error
	Stop() error
	Next() error
	Previous() error

	Volume() (int, error)
	SetVolume(volume int) error

	// LookupPlaylist returns the tracks of a stored playlist, in order.
	LookupPlaylist(uri string) ([]Track, error)
	ClearTracklist() error
	AddTracks(tracks []Track) error

	Close() error
}
