package docstore

import "errors"

var (
	// ErrStoreDisabled is returned by Disabled for every operation.
	ErrStoreDisabled = errors.New("document store is disabled")
	// ErrStoreUnavailable is returned by Unavailable for every read.
	ErrStoreUnavailable = errors.New("document store is unavailable")
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrMalformedDocument indicates a document whose partitions have the wrong shape.
	ErrMalformedDocument = errors.New("malformed runtime document")
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown document store backend")
	// ErrReadOnly is returned when a backend cannot persist documents.
	ErrReadOnly = errors.New("document store is read-only")
)
