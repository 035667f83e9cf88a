package store

import "errors"

var (
	// ErrNotFound signals a missing document, user, or check. Surfaced
	// to clients as a 404 with no side effects.
	ErrNotFound = errors.New("record not found")

	// ErrQuotaExceeded signals an exhausted daily check quota. The
	// counter is never mutated when this is returned.
	ErrQuotaExceeded = errors.New("daily check quota exceeded")
)
