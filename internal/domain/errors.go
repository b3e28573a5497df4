package domain

import "errors"

// Sentinel errors shared across packages.
//
// Item-level lookup failures never escalate to run failures; a source
// fetch failure always aborts the run with no partial results.
var (
	// ErrConfigNotFound is returned when no configuration exists for a
	// feed identity.
	ErrConfigNotFound = errors.New("feed config not found")

	// ErrInvalidConfig is returned for malformed feed settings.
	ErrInvalidConfig = errors.New("invalid feed config")

	// ErrSourceFetch wraps failures of the initial candidate fetch.
	ErrSourceFetch = errors.New("source fetch failed")
)
