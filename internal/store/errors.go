package store

import "errors"

// Sentinel kinds for store lookups.
var (
	// ErrNotFound means the referenced event or job does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoJob means no PENDING job was available to claim.
	ErrNoJob = errors.New("no pending job")
)
