// Package gpio provides GPIO input reading with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Pull selects the internal bias resistor for an input line.
type Pull int

const (
	PullUp Pull = iota
	PullDown
)

// Request describes one input line to claim at startup.
// Active-low buttons get a pull-up so the idle level is high;
// active-high ones get a pull-down.
type Request struct {
	Offset int
	Pull   Pull
}

// Reader reads the raw levels of claimed GPIO input lines.
type Reader interface {
	// Read returns the current level of the line (true = high).
	Read(offset int) (bool, error)

	// Close releases all claimed lines. The daemon always calls it,
	// even after a failed shutdown join.
	Close() error
}
