package cache

import "errors"

var (
	// ErrNotFound is returned when a key is missing or its entry has expired.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrClosed is returned by writes to a closed cache.
	ErrClosed = errors.New("cache: closed")

	// ErrMarshal is returned when a value cannot be encoded for storage.
	ErrMarshal = errors.New("cache: failed to marshal value")

	// ErrUnmarshal is returned when a stored value cannot be decoded.
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")

	// ErrFillType is returned by GetOrSet when a shared fill produced a
	// value of another type.
	ErrFillType = errors.New("cache: fill returned a value of another type")
)
