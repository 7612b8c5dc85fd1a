package docstore

import (
	"context"
	"fmt"
)

// Store provides read access to configuration documents.
type Store interface {
	// Name identifies the backend in logs and health responses.
	Name() string
	// Fetch returns the raw document with the given id from Collection.
	// It returns ErrNotFound when no such document exists.
	Fetch(ctx context.Context, id string) (map[string]any, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Writer persists configuration documents. Only the seeding tool uses it.
type Writer interface {
	Put(ctx context.Context, id string, doc map[string]any) error
}

// Disabled is the store used when no backing store is provisioned.
type Disabled struct {
	// Reason is logged by callers to explain why the store is off.
	Reason string
}

// Name implements Store.
func (Disabled) Name() string { return "disabled" }

// Fetch implements Store.
func (Disabled) Fetch(context.Context, string) (map[string]any, error) {
	return nil, ErrStoreDisabled
}

// Ping implements Store.
func (Disabled) Ping(context.Context) error { return ErrStoreDisabled }

// Close implements Store.
func (Disabled) Close(context.Context) error { return nil }

// Put implements Writer.
func (Disabled) Put(context.Context, string, map[string]any) error { return ErrStoreDisabled }

// Unavailable stands in for a configured store that could not be opened.
// Reads and pings fail with ErrStoreUnavailable wrapping the open error.
type Unavailable struct {
	Backend string
	Err     error
}

// Name implements Store.
func (u Unavailable) Name() string { return u.Backend }

// Fetch implements Store.
func (u Unavailable) Fetch(context.Context, string) (map[string]any, error) {
	return nil, u.err()
}

// Ping implements Store.
func (u Unavailable) Ping(context.Context) error { return u.err() }

// Close implements Store.
func (Unavailable) Close(context.Context) error { return nil }

func (u Unavailable) err() error {
	if u.Err == nil {
		return ErrStoreUnavailable
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, u.Err)
}
