package testutil

import (
	"net/http"

	"opevent/pkg/requestcontext"
)

// WithActor marks the request as made by actorID, as the auth middleware
// would for a valid bearer token.
func WithActor(req *http.Request, actorID string) *http.Request {
	return req.WithContext(requestcontext.WithActorID(req.Context(), actorID))
}

// WithClientMetadata attaches client metadata without going through the
// metadata middleware.
func WithClientMetadata(req *http.Request, clientIP, userAgent string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent)
	return req.WithContext(requestcontext.WithRequest(ctx))
}
