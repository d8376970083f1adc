package domain

import "errors"

// sentinel errors shared across the engine. Filter-level failures are
// swallowed and degrade scores to zero; only aggregator-level and above
// failures propagate to callers, always as one of these recoverable types.
var (
	// ErrNotFound means a destination has no candidate items; callers fall
	// back to a generic pool instead of failing the user flow
	ErrNotFound = errors.New("not found")

	// ErrInsufficientData marks a cold start with zero interactions
	ErrInsufficientData = errors.New("insufficient interaction data")

	// ErrBackendUnavailable means the embedding backend is down or slow;
	// it is caught inside the semantic filter and never reaches callers
	ErrBackendUnavailable = errors.New("backend unavailable")
)
