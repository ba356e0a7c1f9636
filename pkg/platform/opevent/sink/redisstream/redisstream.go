// Package redisstream appends operation events to a Redis stream.
package redisstream

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/valyala/fastjson"
)

// DefaultStream is the stream key events are added to.
const DefaultStream = "operation_events"

// Sink XADDs one stream entry per event with the fields "event_type" and
// "payload".
type Sink struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// Option configures the Sink.
type Option func(*Sink)

// WithStream sets the stream key.
func WithStream(stream string) Option {
	return func(s *Sink) {
		if stream != "" {
			s.stream = stream
		}
	}
}

// WithMaxLen caps the stream at approximately n entries. Zero leaves it
// unbounded.
func WithMaxLen(n int64) Option {
	return func(s *Sink) {
		s.maxLen = n
	}
}

// New returns a Sink writing through client.
func New(client redis.Cmdable, opts ...Option) *Sink {
	s := &Sink{client: client, stream: DefaultStream}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stream returns the stream key.
func (s *Sink) Stream() string {
	return s.stream
}

// Append implements opevent.Sink.
func (s *Sink) Append(ctx context.Context, line []byte) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"event_type": fastjson.GetString(line, "event_type"),
			"payload":    line,
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd to %s: %w", s.stream, err)
	}
	return nil
}
