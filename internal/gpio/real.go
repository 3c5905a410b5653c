//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads GPIO from actual hardware using the Linux GPIO
// character device.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
}

// NewRealReader claims every requested line as an input with its bias.
// On any failure, lines already claimed are released before returning.
func NewRealReader(chipName string, reqs []Request) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	r := &RealReader{
		chip:  chip,
		lines: make(map[int]*gpiocdev.Line, len(reqs)),
	}
	for _, req := range reqs {
		bias := gpiocdev.WithPullUp
		if req.Pull == PullDown {
			bias = gpiocdev.WithPullDown
		}
		line, err := chip.RequestLine(req.Offset, gpiocdev.AsInput, bias)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request line %d: %w", req.Offset, err)
		}
		r.lines[req.Offset] = line
	}
	return r, nil
}

// Read returns the raw level of the line (true = high).
func (r *RealReader) Read(offset int) (bool, error) {
	line, ok := r.lines[offset]
	if !ok {
		return false, fmt.Errorf("line %d not claimed", offset)
	}
	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("read line %d: %w", offset, err)
	}
	return v != 0, nil
}

// Close releases every claimed line and the chip. It keeps going on
// per-line errors so one stuck line cannot hold the rest.
func (r *RealReader) Close() error {
	var errs []error

	for offset, line := range r.lines {
		// Back to plain input before release so external hardware sees
		// the same state it does across a reboot.
		if err := line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line %d: %w", offset, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", offset, err))
		}
	}
	r.lines = nil

	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
