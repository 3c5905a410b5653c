// Package poller runs the fixed-rate sampling loop over all configured
// GPIO lines. A single goroutine owns every piece of per-line state, so
// the loop needs no locking: it is the only reader and writer of the
// previous-level arena and the only caller into the quadrature decoders
// and the event sink.
package poller

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/sweeney/mediapanel/internal/config"
	"github.com/sweeney/mediapanel/internal/gpio"
	"github.com/sweeney/mediapanel/internal/rotary"
)

// DefaultQuantum is the sleep after each full pass. 500µs gives a poll
// rate around 2 kHz, fast enough that an encoder detent always spans
// several passes.
const DefaultQuantum = 500 * time.Microsecond

// Sink receives each decoded input event with the line it came from.
// The line's options bag travels with the line. A sink error is logged
// and dropped; it never stops the loop.
type Sink func(line config.Line, event string) error

// Options tunes the loop. Zero values select production behavior.
type Options struct {
	// Quantum is the sleep between passes. Defaults to DefaultQuantum.
	Quantum time.Duration

	// Sleep is called for the inter-pass quantum and for button
	// debounce stalls. Defaults to time.Sleep; tests inject their own.
	Sleep func(time.Duration)
}

// encoder pairs a decoder with the events its two directions map to:
// clockwise dispatches the phase-A line's event, counter-clockwise the
// phase-B line's.
type encoder struct {
	dec      *rotary.Decoder
	cwEvent  string
	ccwEvent string
}

// Poller is the sampling loop.
type Poller struct {
	lines    []config.Line
	reader   gpio.Reader
	sink     Sink
	quantum  time.Duration
	sleep    func(time.Duration)
	encoders map[string]*encoder
	phases   map[int]rotary.Phase

	// last is the previous-level arena, owned exclusively by Run's
	// goroutine. seeded marks lines whose first read has landed.
	last   map[int]bool
	seeded map[int]bool

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New builds a Poller over the validated pin table.
func New(cfg *config.Config, reader gpio.Reader, sink Sink, opts Options) *Poller {
	if opts.Quantum <= 0 {
		opts.Quantum = DefaultQuantum
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}

	p := &Poller{
		lines:    cfg.Lines,
		reader:   reader,
		sink:     sink,
		quantum:  opts.Quantum,
		sleep:    opts.Sleep,
		encoders: make(map[string]*encoder),
		phases:   make(map[int]rotary.Phase),
		last:     make(map[int]bool),
		seeded:   make(map[int]bool),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, g := range cfg.Groups {
		lineA, _ := cfg.Line(g.PinA)
		lineB, _ := cfg.Line(g.PinB)
		p.encoders[g.ID] = &encoder{
			dec:      rotary.New(g.ID),
			cwEvent:  lineA.Event,
			ccwEvent: lineB.Event,
		}
		p.phases[g.PinA] = rotary.PhaseA
		p.phases[g.PinB] = rotary.PhaseB
	}

	return p
}

// Run executes the loop until Stop is called. It blocks; callers run it
// on its own goroutine. The stop signal is checked once per pass, so an
// in-flight debounce stall is never interrupted early.
func (p *Poller) Run() {
	defer close(p.done)

	p.seedAll()
	for {
		select {
		case <-p.stop:
			return
		default:
		}
		p.pass()
		p.sleep(p.quantum)
	}
}

// Stop signals the loop and waits up to timeout for it to exit. The
// caller releases hardware resources afterwards regardless of the
// result; a timeout here means cleanup may race a still-running pass,
// which is accepted best-effort shutdown.
func (p *Poller) Stop(timeout time.Duration) error {
	p.stopOnce.Do(func() { close(p.stop) })
	select {
	case <-p.done:
		return nil
	case <-time.After(timeout):
		return errors.New("sampling loop did not stop in time")
	}
}

// seedAll takes the initial synchronous reading of every line. Seeding
// only records levels; it never dispatches, so a button held down at
// startup does not fire until it is released and pressed again.
func (p *Poller) seedAll() {
	for _, ln := range p.lines {
		level, err := p.reader.Read(ln.Offset)
		if err != nil {
			log.Printf("initial read of line %d failed: %v", ln.Offset, err)
			continue
		}
		p.seedLine(ln, level)
	}
}

func (p *Poller) seedLine(ln config.Line, level bool) {
	p.last[ln.Offset] = level
	p.seeded[ln.Offset] = true
	if ln.Rotary() {
		p.encoders[ln.RotencID].dec.Seed(p.phases[ln.Offset], level)
	}
}

// pass samples every line once. Read failures keep the line's previous
// level and move on; one misbehaving line cannot halt the rest.
func (p *Poller) pass() {
	for _, ln := range p.lines {
		level, err := p.reader.Read(ln.Offset)
		if err != nil {
			log.Printf("gpio read error on line %d: %v", ln.Offset, err)
			continue
		}

		// A line whose initial read failed seeds on its first good one.
		if !p.seeded[ln.Offset] {
			p.seedLine(ln, level)
			continue
		}

		if level == p.last[ln.Offset] {
			continue
		}

		if ln.Rotary() {
			enc := p.encoders[ln.RotencID]
			switch enc.dec.Apply(p.phases[ln.Offset], level) {
			case rotary.Clockwise:
				p.emit(ln, enc.cwEvent)
			case rotary.CounterClockwise:
				p.emit(ln, enc.ccwEvent)
			}
		} else if level == ln.ActiveLevel() {
			// Activating edge. The releasing edge is absorbed by the
			// level-change check above on a later pass.
			p.emit(ln, ln.Event)

			// Stall the whole pass for the bounce window. This delays
			// rotary sampling too; bounce windows are tens of
			// milliseconds, so the loss is bounded and the loop stays
			// single-threaded. Deliberate, see design notes.
			p.sleep(ln.Debounce)
		}

		p.last[ln.Offset] = level
	}
}

func (p *Poller) emit(ln config.Line, event string) {
	if err := p.sink(ln, event); err != nil {
		log.Printf("input event %s on line %d: %v", event, ln.Offset, err)
	}
}
