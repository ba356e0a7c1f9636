// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware marks a context as belonging to an inbound request and attaches the
// client metadata and actor identity; services and the event emitter only read
// them. A context that was never marked carries no request, which is the normal
// case for background jobs.
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithRequest(ctx)
//	ctx = requestcontext.WithClientMetadata(ctx, ip, userAgent)
//	ctx = requestcontext.WithActorID(ctx, "42")
//
// Usage in services (read values):
//
//	if requestcontext.HasRequest(ctx) {
//		ip, _ := requestcontext.ClientIP(ctx)
//	}
package requestcontext

import "context"

// Context key types (unexported for encapsulation).
type (
	requestKey   struct{}
	clientIPKey  struct{}
	userAgentKey struct{}
	actorIDKey   struct{}
	requestIDKey struct{}
)

// -----------------------------------------------------------------------------
// Request presence
// -----------------------------------------------------------------------------

// WithRequest marks ctx as serving an inbound request.
func WithRequest(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestKey{}, true)
}

// HasRequest reports whether ctx serves an inbound request.
func HasRequest(ctx context.Context) bool {
	ok, _ := ctx.Value(requestKey{}).(bool)
	return ok
}

// -----------------------------------------------------------------------------
// Client metadata (IP, User-Agent)
// -----------------------------------------------------------------------------

// ClientIP retrieves the client IP address from the context.
// ok is false when the address is unknown.
func ClientIP(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPKey{}).(string)
	return ip, ok && ip != ""
}

// UserAgent retrieves the User-Agent from the context.
// ok is false when the request carried no User-Agent header.
func UserAgent(ctx context.Context) (string, bool) {
	ua, ok := ctx.Value(userAgentKey{}).(string)
	return ua, ok && ua != ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	ctx = context.WithValue(ctx, userAgentKey{}, userAgent)
	return ctx
}

// -----------------------------------------------------------------------------
// Actor
// -----------------------------------------------------------------------------

// ActorID retrieves the stable identifier of the authenticated actor.
// ok is false for anonymous requests.
func ActorID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(actorIDKey{}).(string)
	return id, ok && id != ""
}

// WithActorID injects the authenticated actor's identifier into the context.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDKey{}, actorID)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}
