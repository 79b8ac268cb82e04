package backend

import (
	"context"

	"seasonarr/internal/store"
)

// SeriesRef identifies one series downstream.
type SeriesRef struct {
	BackendID int64
	Title     string
}

// WatchStatus reports how the downstream system currently tracks a title.
type WatchStatus struct {
	// Tracked is false when the downstream system no longer knows the ID.
	Tracked bool
	Title   string
	// Group is the release group restriction applied downstream, when one
	// can be determined.
	Group string
}

// Client drives the download-management system. AddTitle is idempotent:
// adding a title the downstream already tracks returns the existing backend
// identifier. RemoveTitle of an absent identifier is a no-op.
type Client interface {
	// Authenticate verifies user credentials against the downstream
	// system's own login. Returns ErrAuthFailed on rejection.
	Authenticate(ctx context.Context, username, password string) error

	// AddTitle starts tracking a title downstream restricted to the given
	// release group and returns the backend identifier.
	AddTitle(ctx context.Context, title *store.Title, group string) (int64, error)

	// EditTitle changes the release group restriction of a tracked title.
	EditTitle(ctx context.Context, backendID int64, group string) error

	// RemoveTitle stops tracking a title downstream. Files are kept.
	RemoveTitle(ctx context.Context, backendID int64) error

	// Status reports the downstream tracking state for a backend identifier.
	Status(ctx context.Context, backendID int64) (WatchStatus, error)

	// Watching lists every title the downstream system currently tracks.
	Watching(ctx context.Context) ([]SeriesRef, error)

	// Lookup searches the downstream system's indexers for a title.
	Lookup(ctx context.Context, term string) ([]SeriesRef, error)
}
