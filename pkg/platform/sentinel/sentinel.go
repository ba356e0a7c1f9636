package sentinel

import "errors"

// Sentinel errors shared across layers. Packages return these wrapped with
// context via fmt.Errorf("...: %w", err) and callers match them with errors.Is.
//
//   - ErrUnknownKind: no field whitelist is configured for a record kind
//   - ErrInvalidInput: a notification or token could not be understood
//   - ErrUnauthorized: a bearer token failed validation
//   - ErrUnavailable: a sink or backing service could not be reached
//   - ErrClosed: a sink was used after Close
//   - ErrNotFound: a catalog lookup found nothing
var (
	ErrUnknownKind  = errors.New("unknown record kind")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
	ErrClosed       = errors.New("closed")
	ErrNotFound     = errors.New("not found")
)
