package session

import "errors"

// Sentinel errors for registry lookups.
var (
	// ErrSessionNotFound is returned for a connection id not present in
	// the registry, including ids of sessions already closed.
	ErrSessionNotFound = errors.New("session not found")
)
