package analytics

import "errors"

// Sentinel kinds for analytics queries, matched with errors.Is.
var (
	// ErrValidation marks malformed query input: inverted windows, missing
	// ids, identical source and target.
	ErrValidation = errors.New("invalid query")

	// ErrNotFound means a referenced event does not exist.
	ErrNotFound = errors.New("event not found")

	// ErrNoPath means no parent/child path connects the two events within
	// the hop bound.
	ErrNoPath = errors.New("no path found")
)
