// Package config loads and validates the pin table that maps GPIO input
// lines to playback-control events. The table is read once at startup and
// is immutable afterwards.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Polarity selects which electrical level counts as "pressed".
type Polarity string

const (
	ActiveHigh Polarity = "active_high"
	ActiveLow  Polarity = "active_low"
)

// DefaultDebounce is used for button lines that don't set bouncetime.
const DefaultDebounce = 50 * time.Millisecond

// Line is the validated configuration for a single GPIO input line.
type Line struct {
	// Offset is the BCM line number on the GPIO chip.
	Offset int

	// Active selects the pressed level. Lines default to active_low,
	// matching the usual button-to-ground wiring with internal pull-up.
	Active Polarity

	// Debounce is how long the sampling loop stalls after an activating
	// edge. Zero for rotary lines, which are never debounced.
	Debounce time.Duration

	// Event is the semantic event dispatched for this line.
	Event string

	// Options is passed through to the event handler unmodified.
	Options map[string]string

	// RotencID groups this line into a rotary encoder. Empty for buttons.
	RotencID string
}

// Rotary reports whether the line is part of a rotary encoder group.
func (l Line) Rotary() bool { return l.RotencID != "" }

// ActiveLevel returns the logical level that counts as pressed.
func (l Line) ActiveLevel() bool { return l.Active == ActiveHigh }

// RotaryGroup is a pair of lines forming one quadrature encoder.
// PinA is the first line declared with the group's rotenc_id, PinB the
// second; the decoder treats them as phase A and phase B.
type RotaryGroup struct {
	ID   string
	PinA int
	PinB int
}

// Config is the validated pin table. Lines preserves declaration order,
// which fixes phase assignment within each rotary group.
type Config struct {
	Lines  []Line
	Groups []RotaryGroup
}

// Line returns the configured line at the given offset, if any.
func (c *Config) Line(offset int) (Line, bool) {
	for _, l := range c.Lines {
		if l.Offset == offset {
			return l, true
		}
	}
	return Line{}, false
}

// ConfigurationError reports an invalid pin table. It is fatal at startup.
type ConfigurationError struct {
	Subject string // e.g. "bcm17" or "rotenc vol"
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Subject, e.Reason)
}

// rawPin mirrors one pin entry in the YAML file before validation.
type rawPin struct {
	Active     string            `yaml:"active"`
	Bouncetime *int              `yaml:"bouncetime"`
	Event      string            `yaml:"event"`
	RotencID   string            `yaml:"rotenc_id"`
	Options    map[string]string `yaml:"options"`
}

type rawFile struct {
	Pins yaml.Node `yaml:"pins"`
}

// Load reads and validates the pin table at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pin table: %w", err)
	}
	return Parse(data)
}

// Parse validates a pin table. Entries are processed in declaration order;
// yaml.Node is used instead of a map so that order survives decoding.
func Parse(data []byte) (*Config, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse pin table: %w", err)
	}
	if raw.Pins.Kind == 0 {
		return nil, &ConfigurationError{Subject: "pins", Reason: "missing pins section"}
	}
	if raw.Pins.Kind != yaml.MappingNode {
		return nil, &ConfigurationError{Subject: "pins", Reason: "pins must be a mapping of line offset to settings"}
	}

	cfg := &Config{}
	seen := make(map[int]bool)
	var groups []*RotaryGroup
	groupOf := make(map[string]*RotaryGroup)

	// Mapping node content alternates key, value.
	for i := 0; i+1 < len(raw.Pins.Content); i += 2 {
		keyNode, valNode := raw.Pins.Content[i], raw.Pins.Content[i+1]
		subject := "bcm" + keyNode.Value

		offset, err := strconv.Atoi(keyNode.Value)
		if err != nil || offset < 0 {
			return nil, &ConfigurationError{Subject: subject, Reason: "line offset must be a non-negative integer"}
		}
		if seen[offset] {
			return nil, &ConfigurationError{Subject: subject, Reason: "duplicate line offset"}
		}
		seen[offset] = true

		var pin rawPin
		if err := valNode.Decode(&pin); err != nil {
			return nil, &ConfigurationError{Subject: subject, Reason: "invalid settings: " + err.Error()}
		}

		line, err := buildLine(offset, subject, pin)
		if err != nil {
			return nil, err
		}

		if line.RotencID != "" {
			g := groupOf[line.RotencID]
			if g == nil {
				g = &RotaryGroup{ID: line.RotencID, PinA: offset, PinB: -1}
				groups = append(groups, g)
				groupOf[line.RotencID] = g
			} else if g.PinB < 0 {
				g.PinB = offset
			} else {
				return nil, &ConfigurationError{
					Subject: "rotenc " + line.RotencID,
					Reason:  fmt.Sprintf("already has two pins, cannot add bcm%d", offset),
				}
			}
		}

		cfg.Lines = append(cfg.Lines, line)
	}

	if len(cfg.Lines) == 0 {
		return nil, &ConfigurationError{Subject: "pins", Reason: "no lines configured"}
	}
	for _, g := range groups {
		if g.PinB < 0 {
			return nil, &ConfigurationError{
				Subject: "rotenc " + g.ID,
				Reason:  "needs exactly two pins, has one",
			}
		}
		cfg.Groups = append(cfg.Groups, *g)
	}

	return cfg, nil
}

func buildLine(offset int, subject string, pin rawPin) (Line, error) {
	if pin.Event == "" {
		return Line{}, &ConfigurationError{Subject: subject, Reason: "missing event name"}
	}

	active := ActiveLow
	switch pin.Active {
	case "", string(ActiveLow):
	case string(ActiveHigh):
		active = ActiveHigh
	default:
		return Line{}, &ConfigurationError{Subject: subject, Reason: "unknown polarity " + strconv.Quote(pin.Active)}
	}

	line := Line{
		Offset:   offset,
		Active:   active,
		Event:    pin.Event,
		Options:  pin.Options,
		RotencID: pin.RotencID,
	}

	// Rotary lines are never debounced; the encoder detents take care of
	// contact bounce and a software delay would drop counts at speed.
	if line.Rotary() {
		return line, nil
	}

	switch {
	case pin.Bouncetime == nil:
		line.Debounce = DefaultDebounce
	case *pin.Bouncetime <= 0:
		return Line{}, &ConfigurationError{Subject: subject, Reason: "bouncetime must be positive"}
	default:
		line.Debounce = time.Duration(*pin.Bouncetime) * time.Millisecond
	}
	return line, nil
}
