package service

import (
	"context"
	"errors"
	"fmt"

	"opevent/internal/operationevent/models"
	"opevent/pkg/platform/sentinel"
)

// Handler reacts to one notification.
type Handler func(ctx context.Context, n models.Notification) error

type route struct {
	signal models.Signal
	kind   models.Kind
}

// Registry maps (signal, kind) pairs to handlers. It is populated at startup
// and read-only afterwards.
type Registry struct {
	routes map[route][]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[route][]Handler)}
}

// Register adds h for signal sent by kind. An empty kind matches every sender
// of signal.
func (r *Registry) Register(signal models.Signal, kind models.Kind, h Handler) {
	key := route{signal: signal, kind: kind}
	r.routes[key] = append(r.routes[key], h)
}

// Handles reports whether any handler matches signal and kind.
func (r *Registry) Handles(signal models.Signal, kind models.Kind) bool {
	return len(r.match(signal, kind)) > 0
}

// Dispatch runs every handler matching n in registration order, kind-specific
// handlers first. A notification nothing handles wraps sentinel.ErrUnknownKind.
func (r *Registry) Dispatch(ctx context.Context, n models.Notification) error {
	handlers := r.match(n.Signal, n.Kind)
	if len(handlers) == 0 {
		return fmt.Errorf("no handler for %s from %q: %w", n.Signal, n.Kind, sentinel.ErrUnknownKind)
	}
	var errs []error
	for _, h := range handlers {
		if err := h(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) match(signal models.Signal, kind models.Kind) []Handler {
	var out []Handler
	if kind != "" {
		out = append(out, r.routes[route{signal: signal, kind: kind}]...)
	}
	return append(out, r.routes[route{signal: signal}]...)
}
