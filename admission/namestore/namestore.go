// Package namestore provides access to the append-only history of
// usernames observed for each user. The history is owned by the event
// layer; the admission engine only reads it.
package namestore

import (
	"context"
)

type NameStore interface {
	// UsernamesOf returns every username ever observed for the user,
	// deduplicated. Unknown users yield an empty set.
	UsernamesOf(ctx context.Context, userID string) ([]string, error)
	// UsernamesOfMany returns the observed usernames for each of the given
	// users in one query. Users with no history are absent from the result.
	UsernamesOfMany(ctx context.Context, userIDs []string) (map[string][]string, error)
	// Observe records a username sighting. Recording an already-known name
	// is a no-op.
	Observe(ctx context.Context, userID, name string) error
}
