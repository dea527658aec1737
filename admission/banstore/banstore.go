// Package banstore provides read access to ban records aggregated across
// every community a deployment serves. Writes happen elsewhere (the event
// layer records bans as they occur); the admission engine only reads, and
// staleness up to the cache TTL is acceptable.
package banstore

import (
	"context"
)

// One ban of a user in one community. Reason is empty when the moderator
// recorded none.
type BanRecord struct {
	CommunityID string
	UserID      string
	Reason      string
}

type BanStore interface {
	// BansForUser returns the user's bans across the given communities.
	// Communities the deployment no longer has access to yield no records,
	// not an error.
	BansForUser(ctx context.Context, userID string, communityIDs []string) ([]BanRecord, error)
	// BansForCommunity returns all bans recorded for one community.
	BansForCommunity(ctx context.Context, communityID string) ([]BanRecord, error)
}
