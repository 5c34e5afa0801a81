// Package history keeps a record of the calls made during one session.
package history

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("history entry not found")
	ErrInvalidID   = errors.New("invalid history entry ID")
	ErrStoreClosed = errors.New("history store is closed")
)

// Store defines history storage operations.
type Store interface {
	// Add stores entry and returns its ID, generating one if empty.
	Add(ctx context.Context, entry Entry) (string, error)

	Get(ctx context.Context, id string) (Entry, error)

	// List returns matching entries, newest first.
	List(ctx context.Context, opts QueryOptions) ([]Entry, error)

	Count(ctx context.Context, opts QueryOptions) (int64, error)

	Stats(ctx context.Context) (Stats, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error

	Close() error
}
