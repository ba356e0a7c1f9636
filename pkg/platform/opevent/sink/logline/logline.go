// Package logline writes operation events to a text stream, one JSON object
// per line.
package logline

import (
	"context"
	"io"
	"os"
	"sync"
)

// Sink appends newline-terminated lines to an io.Writer. Each line is written
// with a single Write call so concurrent appends never interleave.
type Sink struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a Sink writing to w, or to stderr when w is nil.
func New(w io.Writer) *Sink {
	if w == nil {
		w = os.Stderr
	}
	return &Sink{w: w}
}

// Append implements opevent.Sink.
func (s *Sink) Append(_ context.Context, line []byte) error {
	buf := make([]byte, len(line)+1)
	copy(buf, line)
	buf[len(line)] = '\n'

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(buf)
	return err
}
