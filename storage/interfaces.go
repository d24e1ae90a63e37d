package storage

import (
	"context"
	"time"

	"github.com/poiesic/grantmatch/core"
)

// GrantFilter narrows ListOpen results. Zero values mean "no constraint".
type GrantFilter struct {
	// Organizations restricts results to grants from these funders,
	// matched case-insensitively.
	Organizations []string

	// Category restricts results to grants aimed at a class of applicants.
	// CategoryAll (or empty) matches everything.
	Category core.Category

	// Now is the reference time for the open-deadline check.
	// Zero means time.Now.
	Now time.Time
}

// GrantRepository provides operations for managing grants.
// Implementations must be thread-safe and support concurrent access.
type GrantRepository interface {
	// AddGrants adds or overwrites one or more grants, keyed by Grant.Id.
	// Grants failing validation are rejected and nothing is written.
	AddGrants(ctx context.Context, grants ...*core.Grant) error

	// GetGrant retrieves a single grant by ID.
	// Returns ErrNotFound if the grant doesn't exist.
	GetGrant(ctx context.Context, id string) (*core.Grant, error)

	// ListOpen retrieves every grant whose closing date is in the future
	// (or unset), narrowed by the filter. Order is unspecified.
	ListOpen(ctx context.Context, filter GrantFilter) ([]*core.Grant, error)

	// Count reports the total number of stored grants, open or not.
	Count(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
