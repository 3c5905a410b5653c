package gpio

import (
	"fmt"
	"sync"
)

// FakeReader is a test double that returns scripted per-line levels.
// Each Read of a line consumes the next scripted sample; when a line's
// script is exhausted the last sample repeats. Safe for concurrent use
// so tests can poke it while the sampling loop runs.
type FakeReader struct {
	mu      sync.Mutex
	scripts map[int][]bool
	index   map[int]int
	errs    map[int]error

	// CloseCount tracks how many times Close was called.
	CloseCount int
}

// NewFakeReader creates an empty FakeReader.
func NewFakeReader() *FakeReader {
	return &FakeReader{
		scripts: make(map[int][]bool),
		index:   make(map[int]int),
		errs:    make(map[int]error),
	}
}

// Script replaces the sample sequence for a line and rewinds it.
func (f *FakeReader) Script(offset int, levels ...bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[offset] = levels
	f.index[offset] = 0
}

// Append adds samples to the end of a line's script without rewinding.
func (f *FakeReader) Append(offset int, levels ...bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[offset] = append(f.scripts[offset], levels...)
}

// SetError makes Read fail for the line until cleared with a nil error.
func (f *FakeReader) SetError(offset int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, offset)
	} else {
		f.errs[offset] = err
	}
}

// Read returns the next scripted sample for the line.
func (f *FakeReader) Read(offset int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.errs[offset]; err != nil {
		return false, err
	}

	script := f.scripts[offset]
	if len(script) == 0 {
		return false, fmt.Errorf("no samples scripted for line %d", offset)
	}

	i := f.index[offset]
	if i < len(script)-1 {
		f.index[offset] = i + 1
	}
	return script[i], nil
}

// Close counts the call.
func (f *FakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CloseCount++
	return nil
}

// Closed reports whether Close has been called at least once.
func (f *FakeReader) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CloseCount > 0
}
