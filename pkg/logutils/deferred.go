package logutils

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// Deferred holds log lines in memory until Flush is called. Only the most
// recent lines are kept; older ones are counted and reported as dropped.
// Safe for concurrent use.
type Deferred struct {
	mu      sync.Mutex
	max     int
	lines   [][]byte
	dropped int
}

// NewDeferred returns a Deferred that keeps at most max lines. A max of zero
// or less keeps everything.
func NewDeferred(max int) *Deferred {
	return &Deferred{max: max}
}

// Write stores p as one line. zerolog writes exactly one event per call.
func (d *Deferred) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	line := bytes.Clone(p)
	if len(line) == 0 || line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}

	d.lines = append(d.lines, line)
	if d.max > 0 && len(d.lines) > d.max {
		d.lines = d.lines[1:]
		d.dropped++
	}
	return len(p), nil
}

// Len returns the number of buffered lines.
func (d *Deferred) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lines)
}

// Flush writes the buffered lines to w and empties the buffer.
func (d *Deferred) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dropped > 0 {
		if _, err := fmt.Fprintf(w, "(%d earlier messages dropped)\n", d.dropped); err != nil {
			return err
		}
	}
	for _, line := range d.lines {
		if _, err := w.Write(line); err != nil {
			return err
		}
	}

	d.lines = nil
	d.dropped = 0
	return nil
}
