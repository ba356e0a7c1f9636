// Package opevent builds operation events and writes them to a sink once the
// work that caused them is durable.
//
// Emit builds and serializes the event immediately, capturing the request
// metadata present at call time. Inside an active unit of work the sink write
// is queued as a commit hook and dropped on rollback; outside one it happens
// before Emit returns.
package opevent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"opevent/pkg/platform/sentinel"
	"opevent/pkg/platform/uow"
	"opevent/pkg/requestcontext"
)

const tracerName = "opevent"

// Emitter turns messages into events and appends them to a Sink.
type Emitter struct {
	sink      Sink
	logger    *slog.Logger
	metrics   *Metrics
	location  *time.Location
	clock     func() time.Time
	namespace string
	tracer    trace.Tracer
}

// Option configures the Emitter.
type Option func(*Emitter)

// WithLogger sets the logger used to report failed deferred writes.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(e *Emitter) {
		e.metrics = m
	}
}

// WithLocation sets the location event times are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(e *Emitter) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(clock func() time.Time) Option {
	return func(e *Emitter) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithNamespace overrides the event type prefix.
func WithNamespace(ns string) Option {
	return func(e *Emitter) {
		e.namespace = ns
	}
}

// WithTracer sets the tracer used for emission spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Emitter) {
		if t != nil {
			e.tracer = t
		}
	}
}

// New creates an Emitter writing to sink.
func New(sink Sink, opts ...Option) *Emitter {
	e := &Emitter{
		sink:      sink,
		logger:    slog.Default(),
		location:  time.Local,
		clock:     time.Now,
		namespace: Namespace,
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EmitOption sets an optional envelope flag.
type EmitOption func(*Event)

// WithCreated marks the event as a creation (true) or not (false).
func WithCreated(created bool) EmitOption {
	return func(ev *Event) {
		ev.Created = &created
	}
}

// WithDeleted marks the event as a deletion (true) or not (false).
func WithDeleted(deleted bool) EmitOption {
	return func(ev *Event) {
		ev.Deleted = &deleted
	}
}

// Build assembles the envelope for message. The ambient request metadata is
// read from ctx now; without a request all three fields stay nil.
func (e *Emitter) Build(ctx context.Context, sender any, message any, opts ...EmitOption) (Event, error) {
	name := SenderName(sender)
	if name == "" {
		return Event{}, fmt.Errorf("event sender %T has no name: %w", sender, sentinel.ErrInvalidInput)
	}

	ev := Event{
		EventType: e.namespace + "." + strings.ToLower(name),
		Message:   message,
		Time:      e.clock().In(e.location).Format(TimeLayout),
	}
	for _, opt := range opts {
		opt(&ev)
	}

	if requestcontext.HasRequest(ctx) {
		ev.ClientIP = optional(requestcontext.ClientIP(ctx))
		ev.ActorIdentity = optional(requestcontext.ActorID(ctx))
		ev.UserAgent = optional(requestcontext.UserAgent(ctx))
	}
	return ev, nil
}

// Emit builds and serializes an event, then appends it to the sink either now
// or when the unit of work in ctx commits. Build and serialization errors are
// returned immediately. Sink errors are returned on the immediate path and
// logged on the deferred one.
func (e *Emitter) Emit(ctx context.Context, sender any, message any, opts ...EmitOption) error {
	ctx, span := e.tracer.Start(ctx, "opevent.Emit")
	defer span.End()

	ev, err := e.Build(ctx, sender, message, opts...)
	if err != nil {
		e.buildFailed(span, err)
		return err
	}
	line, err := json.Marshal(ev)
	if err != nil {
		err = fmt.Errorf("serialize event %s: %w", ev.EventType, err)
		e.buildFailed(span, err)
		return err
	}
	span.SetAttributes(attribute.String("opevent.event_type", ev.EventType))

	u, deferred := uow.From(ctx)
	span.SetAttributes(attribute.Bool("opevent.deferred", deferred))
	if !deferred {
		if err := e.write(ctx, ev.EventType, line); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "sink append failed")
			return err
		}
		return nil
	}

	if e.metrics != nil {
		e.metrics.IncDeferred()
	}
	hookCtx := context.WithoutCancel(ctx)
	u.OnCommit(func() {
		if err := e.write(hookCtx, ev.EventType, line); err != nil {
			if e.metrics != nil {
				e.metrics.IncDiscarded()
			}
			e.logger.ErrorContext(hookCtx, "operation event lost after commit",
				"event_type", ev.EventType,
				"request_id", requestcontext.RequestID(hookCtx),
				"error", err,
			)
		}
	})
	return nil
}

func (e *Emitter) write(ctx context.Context, eventType string, line []byte) error {
	start := time.Now()
	err := e.sink.Append(ctx, line)
	if e.metrics != nil {
		e.metrics.ObserveSinkDuration(time.Since(start).Seconds())
	}
	if err != nil {
		if e.metrics != nil {
			e.metrics.IncSinkFailures()
		}
		return fmt.Errorf("append event %s: %w", eventType, err)
	}
	if e.metrics != nil {
		e.metrics.IncEmitted(eventType)
	}
	return nil
}

func (e *Emitter) buildFailed(span trace.Span, err error) {
	if e.metrics != nil {
		e.metrics.IncBuildFailures()
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "event build failed")
}

func optional(v string, ok bool) *string {
	if !ok {
		return nil
	}
	return &v
}
