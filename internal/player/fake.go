package player

import "fmt"

// Fake is a scripted in-memory Controller for tests. It records every
// call in order and applies writes to its own state.
type Fake struct {
	// PlayState is the current transport state.
	PlayState PlaybackState

	// Vol is the current mixer volume.
	Vol int

	// Playlists maps playlist URI to its tracks.
	Playlists map[string][]Track

	// Tracklist is the current play queue.
	Tracklist []Track

	// Calls records method names in call order.
	Calls []string

	// Err, if set, is returned by every call.
	Err error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFake creates a stopped Fake with an empty queue.
func NewFake() *Fake {
	return &Fake{
		PlayState: StateStopped,
		Playlists: make(map[string][]Track),
	}
}

func (f *Fake) record(call string) error {
	f.Calls = append(f.Calls, call)
	return f.Err
}

func (f *Fake) State() (PlaybackState, error) {
	if err := f.record("state"); err != nil {
		return "", err
	}
	return f.PlayState, nil
}

func (f *Fake) Play() error {
	if err := f.record("play"); err != nil {
		return err
	}
	f.PlayState = StatePlaying
	return nil
}

func (f *Fake) Pause() error {
	if err := f.record("pause"); err != nil {
		return err
	}
	f.PlayState = StatePaused
	return nil
}

func (f *Fake) Stop() error {
	if err := f.record("stop"); err != nil {
		return err
	}
	f.PlayState = StateStopped
	return nil
}

func (f *Fake) Next() error {
	return f.record("next")
}

func (f *Fake) Previous() error {
	return f.record("previous")
}

func (f *Fake) Volume() (int, error) {
	if err := f.record("volume"); err != nil {
		return 0, err
	}
	return f.Vol, nil
}

func (f *Fake) SetVolume(volume int) error {
	if err := f.record(fmt.Sprintf("set_volume(%d)", volume)); err != nil {
		return err
	}
	f.Vol = volume
	return nil
}

func (f *Fake) LookupPlaylist(uri string) ([]Track, error) {
	if err := f.record("lookup_playlist(" + uri + ")"); err != nil {
		return nil, err
	}
	tracks, ok := f.Playlists[uri]
	if !ok {
		return nil, fmt.Errorf("no such playlist: %s", uri)
	}
	return tracks, nil
}

func (f *Fake) ClearTracklist() error {
	if err := f.record("clear"); err != nil {
		return err
	}
	f.Tracklist = nil
	return nil
}

func (f *Fake) AddTracks(tracks []Track) error {
	if err := f.record("add"); err != nil {
		return err
	}
	f.Tracklist = append(f.Tracklist, tracks...)
	return nil
}

func (f *Fake) Close() error {
	f.Closed = true
	return nil
}
