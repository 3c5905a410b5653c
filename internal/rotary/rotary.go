// Package rotary decodes two-phase quadrature encoders. It is pure logic
// with no hardware or timing dependencies; the sampling loop feeds it the
// levels it observes and it answers with a rotation direction.
package rotary

// Phase identifies which encoder pin a level belongs to.
type Phase int

const (
	PhaseA Phase = iota
	PhaseB
)

// Direction is the outcome of applying one sample to the decoder.
type Direction int

const (
	None Direction = iota
	Clockwise
	CounterClockwise
)

func (d Direction) String() string {
	switch d {
	case Clockwise:
		return "clockwise"
	case CounterClockwise:
		return "counter-clockwise"
	default:
		return "none"
	}
}

// The 4-state Gray cycle, clockwise: 00 -> 01 -> 11 -> 10 -> 00.
// cwNext[s] is the state following s in the clockwise direction.
var cwNext = [4]uint8{0b00: 0b01, 0b01: 0b11, 0b11: 0b10, 0b10: 0b00}

// Decoder tracks the 2-bit Gray-code state of one encoder. It stays
// neutral until both phases have been seeded by a successful read, so a
// half-observed encoder can never emit a spurious pulse.
type Decoder struct {
	id      string
	levelA  bool
	levelB  bool
	seededA bool
	seededB bool
	state   uint8
}

// New creates a decoder for the encoder group with the given id.
func New(id string) *Decoder {
	return &Decoder{id: id}
}

// ID returns the encoder group id.
func (d *Decoder) ID() string { return d.id }

// Seed records an initial level without emitting an event. Once both
// phases are seeded the decoder starts from the observed state.
func (d *Decoder) Seed(phase Phase, level bool) {
	d.set(phase, level)
	if d.seededA && d.seededB {
		d.state = d.bits()
	}
}

// Apply records a sampled level and reports the resulting rotation.
// An adjacent Gray transition yields one directional pulse. A double-bit
// change means a sample was missed or glitched; the prior true state
// cannot be recovered, so the transition is discarded and decoding
// resumes from the newly observed state.
func (d *Decoder) Apply(phase Phase, level bool) Direction {
	d.set(phase, level)
	if !d.seededA || !d.seededB {
		return None
	}

	next := d.bits()
	prev := d.state
	d.state = next

	switch next {
	case prev:
		return None
	case cwNext[prev]:
		return Clockwise
	}
	if cwNext[next] == prev {
		return CounterClockwise
	}
	return None // both bits changed in one sample
}

func (d *Decoder) set(phase Phase, level bool) {
	if phase == PhaseA {
		d.levelA = level
		d.seededA = true
	} else {
		d.levelB = level
		d.seededB = true
	}
}

func (d *Decoder) bits() uint8 {
	var s uint8
	if d.levelA {
		s |= 0b10
	}
	if d.levelB {
		s |= 0b01
	}
	return s
}
