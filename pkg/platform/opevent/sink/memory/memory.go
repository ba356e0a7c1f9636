// Package memory provides an in-memory sink for tests and local development.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"opevent/pkg/platform/opevent"
)

// Sink records every appended line.
type Sink struct {
	mu    sync.Mutex
	lines [][]byte
	err   error
}

// New returns an empty Sink.
func New() *Sink {
	return &Sink{}
}

// Append implements opevent.Sink.
func (s *Sink) Append(_ context.Context, line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.lines = append(s.lines, append([]byte(nil), line...))
	return nil
}

// FailWith makes subsequent appends return err. A nil err restores normal
// behaviour.
func (s *Sink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Lines returns the recorded lines in append order.
func (s *Sink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	for i, l := range s.lines {
		out[i] = string(l)
	}
	return out
}

// Len returns the number of recorded lines.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Events decodes the recorded lines.
func (s *Sink) Events() ([]opevent.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]opevent.Event, 0, len(s.lines))
	for i, l := range s.lines {
		var ev opevent.Event
		if err := json.Unmarshal(l, &ev); err != nil {
			return nil, fmt.Errorf("decode line %d: %w", i, err)
		}
		out = append(out, ev)
	}
	return out, nil
}

// Clear drops every recorded line.
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}
