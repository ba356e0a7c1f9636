package opevent

import (
	"context"
	"reflect"
)

// Namespace prefixes every event type emitted by this subsystem.
const Namespace = "operation_event"

// TimeLayout renders Event.Time in the emitter's location.
const TimeLayout = "2006-01-02 15:04:05.000000-07:00"

// Event is the envelope written to a sink, one JSON object per line.
// Nullable fields are pointers and encode as null when unset.
type Event struct {
	EventType     string  `json:"event_type"`
	Message       any     `json:"message"`
	Created       *bool   `json:"created"`
	Deleted       *bool   `json:"deleted"`
	Time          string  `json:"time"`
	ClientIP      *string `json:"client_ip"`
	ActorIdentity *string `json:"actor_identity"`
	UserAgent     *string `json:"user_agent"`
}

// Sink appends one serialized event line. Implementations must be safe for
// concurrent use; the line carries no trailing newline.
type Sink interface {
	Append(ctx context.Context, line []byte) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, line []byte) error

// Append implements Sink.
func (f SinkFunc) Append(ctx context.Context, line []byte) error {
	return f(ctx, line)
}

// Kind is implemented by senders that name their own event kind.
type Kind interface {
	EventKind() string
}

// SenderName returns the name an event type is derived from. Strings are used
// verbatim, Kind implementations name themselves and any other value is named
// after its (dereferenced) Go type.
func SenderName(sender any) string {
	switch s := sender.(type) {
	case nil:
		return ""
	case string:
		return s
	case Kind:
		return s.EventKind()
	case reflect.Type:
		return typeName(s)
	}
	return typeName(reflect.TypeOf(sender))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
