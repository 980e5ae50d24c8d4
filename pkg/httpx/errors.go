package httpx

import "errors"

var (
	// ErrTransport is returned when the HTTP round trip itself fails
	// (DNS, dial, TLS, timeout, body read).
	ErrTransport = errors.New("httpx: transport failure")

	// ErrDecode is returned when a successful response body cannot be parsed.
	ErrDecode = errors.New("httpx: failed to decode response")

	// ErrBodyTooLarge is returned, joined with ErrTransport, when a response
	// body exceeds the executor's size limit.
	ErrBodyTooLarge = errors.New("httpx: response body too large")

	// ErrUnexpectedStatus is returned for a non-2xx response whose body
	// cannot be parsed either.
	ErrUnexpectedStatus = errors.New("httpx: unexpected response status")

	// ErrInvalidRequest is returned when a request cannot be built,
	// e.g. the base URL does not parse.
	ErrInvalidRequest = errors.New("httpx: invalid request")
)
