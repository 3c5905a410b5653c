package player

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/fhs/gompd/v2/mpd"
)

// MPDController controls an MPD server. The connection is dialed lazily
// and redialed once per call if it has gone stale, so a restarted MPD
// does not require restarting the panel.
type MPDController struct {
	network string
	addr    string

	mu     sync.Mutex
	client *mpd.Client
}

// NewMPDController creates a controller for the given address. An
// address containing a path separator is treated as a unix socket,
// anything else as host:port.
func NewMPDController(addr string) *MPDController {
	network := "tcp"
	if strings.Contains(addr, "/") {
		network = "unix"
	}
	return &MPDController{network: network, addr: addr}
}

// do runs fn against a live client, dialing on demand and retrying once
// after a redial if the call fails on what may be a dead connection.
func (m *MPDController) do(fn func(c *mpd.Client) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		c, err := mpd.Dial(m.network, m.addr)
		if err != nil {
			return fmt.Errorf("dial mpd %s: %w", m.addr, err)
		}
		m.client = c
	}

	err := fn(m.client)
	if err == nil {
		return nil
	}

	m.client.Close()
	m.client = nil
	c, derr := mpd.Dial(m.network, m.addr)
	if derr != nil {
		return err
	}
	m.client = c
	return fn(m.client)
}

// State returns the transport state from MPD's status.
func (m *MPDController) State() (PlaybackState, error) {
	var state PlaybackState
	err := m.do(func(c *mpd.Client) error {
		attrs, err := c.Status()
		if err != nil {
			return err
		}
		state = stateFromAttr(attrs["state"])
		return nil
	})
	return state, err
}

// Play starts or resumes playback.
func (m *MPDController) Play() error {
	return m.do(func(c *mpd.Client) error { return c.Play(-1) })
}

// Pause pauses playback.
func (m *MPDController) Pause() error {
	return m.do(func(c *mpd.Client) error { return c.Pause(true) })
}

// Stop stops playback.
func (m *MPDController) Stop() error {
	return m.do(func(c *mpd.Client) error { return c.Stop() })
}

// Next skips to the next track.
func (m *MPDController) Next() error {
	return m.do(func(c *mpd.Client) error { return c.Next() })
}

// Previous skips to the previous track.
func (m *MPDController) Previous() error {
	return m.do(func(c *mpd.Client) error { return c.Previous() })
}

// Volume returns the mixer volume. MPD reports -1 when no output is
// active; that surfaces as an error rather than a bogus level.
func (m *MPDController) Volume() (int, error) {
	var volume int
	err := m.do(func(c *mpd.Client) error {
		attrs, err := c.Status()
		if err != nil {
			return err
		}
		v, err := volumeFromAttr(attrs["volume"])
		if err != nil {
			return err
		}
		volume = v
		return nil
	})
	return volume, err
}

// SetVolume sets the mixer volume.
func (m *MPDController) SetVolume(volume int) error {
	return m.do(func(c *mpd.Client) error { return c.SetVolume(volume) })
}

// LookupPlaylist returns the tracks of a stored playlist, in order.
func (m *MPDController) LookupPlaylist(uri string) ([]Track, error) {
	var tracks []Track
	err := m.do(func(c *mpd.Client) error {
		songs, err := c.PlaylistContents(uri)
		if err != nil {
			return err
		}
		tracks = tracks[:0]
		for _, attrs := range songs {
			tracks = append(tracks, Track{URI: attrs["file"], Title: attrs["Title"]})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tracks, nil
}

// ClearTracklist empties the play queue.
func (m *MPDController) ClearTracklist() error {
	return m.do(func(c *mpd.Client) error { return c.Clear() })
}

// AddTracks appends tracks to the play queue in order.
func (m *MPDController) AddTracks(tracks []Track) error {
	return m.do(func(c *mpd.Client) error {
		for _, t := range tracks {
			if err := c.Add(t.URI); err != nil {
				return fmt.Errorf("add %s: %w", t.URI, err)
			}
		}
		return nil
	})
}

// Close disconnects from MPD.
func (m *MPDController) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	err := m.client.Close()
	m.client = nil
	return err
}

func stateFromAttr(s string) PlaybackState {
	switch s {
	case "play":
		return StatePlaying
	case "pause":
		return StatePaused
	default:
		return StateStopped
	}
}

func volumeFromAttr(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("mpd reported volume %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("mpd reported volume %d (no active output?)", v)
	}
	return v, nil
}
