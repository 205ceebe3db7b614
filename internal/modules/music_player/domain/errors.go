package domain

import "errors"

// Base error kinds. Specific errors wrap one of these so callers can
// classify failures with errors.Is without matching message text.
var (
	// ErrInvalidArgument marks a parameter that fails validation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState marks an operation that is not valid in the
	// current playback state.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotFound marks a missing queue, song, or out-of-range index.
	ErrNotFound = errors.New("not found")

	// ErrEmptyCollection marks an empty input where at least one
	// element is required.
	ErrEmptyCollection = errors.New("empty collection")

	// ErrSourceExhausted marks autoplay running out of related songs.
	ErrSourceExhausted = errors.New("source exhausted")

	// ErrUpstream marks a failure reported by the resolver or transport.
	ErrUpstream = errors.New("upstream failure")
)
