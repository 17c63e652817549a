package api

import "errors"

var (
	// ErrAttemptTimeout indicates a single transport attempt exceeded its
	// per-attempt deadline.
	ErrAttemptTimeout = errors.New("request attempt timed out")

	// ErrMalformedBody indicates a response body that is neither empty nor
	// valid JSON.
	ErrMalformedBody = errors.New("malformed response body")

	// ErrDevAuthDisabled indicates a dev-regime credential was presented to a
	// client that does not accept them (production build or dev mode off).
	ErrDevAuthDisabled = errors.New("dev credentials are disabled")

	// ErrInvalidRequest indicates the request could not be constructed at all
	// (bad method or URL). It is never retried.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrBodyTooLarge indicates a response body, raw or decompressed, larger
	// than the client accepts. It is never retried.
	ErrBodyTooLarge = errors.New("response body too large")
)
