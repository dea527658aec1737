// Package platform defines the contract between the admission engine and
// the chat platform it moderates. The engine only ever sees these snapshot
// types and the Client interface; GatewayClient implements them against
// the HTTP API of the gateway sidecar holding the actual platform session.
package platform

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPermissionDenied indicates the platform refused an action because
	// the bot account lacks the required permission.
	ErrPermissionDenied = errors.New("platform: permission denied")
	// ErrNotFound indicates the referenced community, member, or message no
	// longer exists (or never did).
	ErrNotFound = errors.New("platform: not found")
)

// Snapshot of a user within one community. Immutable once handed to the
// engine; a fresh snapshot should be fetched for each evaluation.
type Member struct {
	UserID      string
	CommunityID string
	Username    string
	// Community-local nickname, empty if unset.
	Nick      string
	CreatedAt time.Time
	JoinedAt  time.Time
	HasAvatar bool
	Bot       bool
	// Set if the member is an active paid booster of the community.
	BoosterSince *time.Time
	// True if the account carries a premium subscription.
	Premium bool
	// True for platform-verified, partnered, or staff accounts.
	Distinguished bool
	// True if the member holds a moderation role in the community, as
	// resolved by the platform client when it builds the snapshot.
	Moderator bool
	// True if platform-level signals indicate the account is deleted.
	Deleted bool
	RoleIDs []string
}

// HasRole reports whether the member currently carries the given role.
func (m *Member) HasRole(roleID string) bool {
	for _, r := range m.RoleIDs {
		if r == roleID {
			return true
		}
	}
	return false
}

// DisplayName returns the nickname if set, otherwise the username.
func (m *Member) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	return m.Username
}

type Community struct {
	ID          string
	Name        string
	MemberCount int
	// Channel the admission modlog messages are published to. Empty if the
	// community has not configured one.
	ModlogChannelID string
}

// Subset of permission bits the admission core cares about.
type Permissions struct {
	ManageRoles bool
	KickMembers bool
	BanMembers  bool
}

// One entry of a community's current ban list.
type BanEntry struct {
	UserID   string
	Username string
	Reason   string
}

// Client is the platform API surface consumed by the admission engine.
//
// Any action method may return ErrPermissionDenied; reads may return
// ErrNotFound for communities or members the deployment no longer has
// access to.
type Client interface {
	// BotUserID returns the user id of the deployment's own account.
	BotUserID() string

	Community(ctx context.Context, communityID string) (*Community, error)
	// Communities lists every community the deployment currently serves.
	Communities(ctx context.Context) ([]Community, error)

	Member(ctx context.Context, communityID, userID string) (*Member, error)
	// ListMembers returns one page of the community's membership, plus a
	// cursor for the next page. An empty returned cursor means the listing
	// is complete. Membership may be unbounded; callers must not assume the
	// full set fits in memory.
	ListMembers(ctx context.Context, communityID, cursor string, limit int) ([]Member, string, error)

	// MemberPermissions resolves the effective permission bits of a member.
	MemberPermissions(ctx context.Context, communityID, userID string) (Permissions, error)
	// BotPermissions resolves the bot account's own permission bits.
	BotPermissions(ctx context.Context, communityID string) (Permissions, error)

	AddRole(ctx context.Context, communityID, userID, roleID string) error
	Kick(ctx context.Context, communityID, userID, reason string) error
	Ban(ctx context.Context, communityID, userID, reason string) error

	// SendDirectMessage delivers a DM to the user. May fail if the user has
	// disabled DMs; callers decide whether that matters.
	SendDirectMessage(ctx context.Context, userID, content string) error

	// PublishModlog posts a message to the community's modlog channel with
	// an attached identity marker, retrievable later from reaction events.
	// Returns the message id.
	PublishModlog(ctx context.Context, communityID, content, markerUserID string) (string, error)
	// AddReaction seeds a reaction on a previously published message.
	AddReaction(ctx context.Context, communityID, messageID, emoji string) error

	// BanList returns the community's current bans. Requires the bot to
	// hold ban permission in that community.
	BanList(ctx context.Context, communityID string) ([]BanEntry, error)
}
