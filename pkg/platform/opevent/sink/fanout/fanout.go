// Package fanout writes each operation event to several sinks.
package fanout

import (
	"context"
	"errors"
	"fmt"

	"opevent/pkg/platform/opevent"
)

// Sink appends to every wrapped sink in order. A failing sink does not stop
// later ones; the failures are joined into the returned error.
type Sink struct {
	sinks []opevent.Sink
}

// New returns a Sink over sinks, skipping nil entries.
func New(sinks ...opevent.Sink) *Sink {
	out := make([]opevent.Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Sink{sinks: out}
}

// Append implements opevent.Sink.
func (f *Sink) Append(ctx context.Context, line []byte) error {
	var errs []error
	for i, s := range f.sinks {
		if err := s.Append(ctx, line); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of wrapped sinks.
func (f *Sink) Len() int {
	return len(f.sinks)
}
