// Package lockstore holds per-community lockdown expiry state. The state
// is persisted alongside the rest of the moderation database so a process
// restart does not silently lift an active lockdown.
package lockstore

import (
	"context"
	"time"
)

type LockStore interface {
	// Get returns the stored expiry for the community, or nil if none is
	// stored. Callers decide whether a stored expiry is still in the future.
	Get(ctx context.Context, communityID string) (*time.Time, error)
	Set(ctx context.Context, communityID string, expiresAt time.Time) error
	Clear(ctx context.Context, communityID string) error
}
