// Package breaker guards a sink with a circuit breaker. While the breaker is
// open, appends go to the fallback sink, or fail fast when there is none.
package breaker

import (
	"context"
	"fmt"
	"log/slog"

	"opevent/pkg/platform/circuit"
	"opevent/pkg/platform/opevent"
	"opevent/pkg/platform/sentinel"
)

// Sink wraps a primary sink with a breaker.
type Sink struct {
	primary  opevent.Sink
	fallback opevent.Sink
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

// Option configures the Sink.
type Option func(*Sink)

// WithFallback sets the sink used while the breaker is open.
func WithFallback(s opevent.Sink) Option {
	return func(b *Sink) {
		b.fallback = s
	}
}

// WithLogger sets the logger for state changes.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Sink) {
		b.logger = logger
	}
}

// New guards primary with breaker.
func New(primary opevent.Sink, breaker *circuit.Breaker, opts ...Option) *Sink {
	s := &Sink{primary: primary, breaker: breaker, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append implements opevent.Sink.
func (s *Sink) Append(ctx context.Context, line []byte) error {
	if !s.breaker.Allow() {
		return s.degraded(ctx, line, nil)
	}

	err := s.primary.Append(ctx, line)
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "sink circuit closed", "sink", s.breaker.Name())
		}
		return nil
	}

	useFallback, change := s.breaker.RecordFailure()
	if change.Opened {
		s.logger.WarnContext(ctx, "sink circuit opened", "sink", s.breaker.Name(), "error", err)
	}
	if !useFallback {
		return err
	}
	return s.degraded(ctx, line, err)
}

func (s *Sink) degraded(ctx context.Context, line []byte, cause error) error {
	if s.fallback != nil {
		return s.fallback.Append(ctx, line)
	}
	if cause != nil {
		return fmt.Errorf("sink %s circuit open: %w: %w", s.breaker.Name(), sentinel.ErrUnavailable, cause)
	}
	return fmt.Errorf("sink %s circuit open: %w", s.breaker.Name(), sentinel.ErrUnavailable)
}
