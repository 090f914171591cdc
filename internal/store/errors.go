package store

import "errors"

// Sentinel errors returned by lifecycle operations. Duplicate entries, invalid
// transitions and multiple active rows are invariant violations and must reach
// the caller undowngraded; handlers map them to failure responses, never to
// soft denials.
var (
	ErrDuplicateActiveEntry  = errors.New("duplicate active entry")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrNoActiveEntry         = errors.New("no active entry")
	ErrEntryNotFound         = errors.New("entry not found")
	ErrMultipleActiveEntries = errors.New("multiple active entries for vehicle")
)
