package admission

import (
	"context"
	"log/slog"
	"time"

	"github.com/wardenbot/warden/admission/banstore"
	"github.com/wardenbot/warden/platform"
)

// Per-community validation policy snapshot. Read-only during evaluation.
type Config struct {
	Enabled     bool
	TrustRoleID string
	// If set, unverified members older than this are eligible for purge.
	KickUnverifiedAfter *time.Duration
}

// ConfigSource resolves the validation policy for a community. The backing
// configuration storage lives outside this module.
type ConfigSource interface {
	ValidationConfig(ctx context.Context, communityID string) (*Config, error)
}

// The mutable accumulator for one member evaluation. Created by the
// engine, passed through the validator chain, and discarded after the
// modlog message is published.
//
// Approved starts true. Each validator that records a reason flips it to
// that validator's polarity, so the last validator in chain order that
// records anything wins the verdict. The reason lists are append-only; an
// overturned rejection stays in the audit trail.
type Context struct {
	// Actual golang "context.Context", for timeouts on storage and
	// platform calls made during evaluation.
	Ctx context.Context
	// slog handle with user/community fields pre-populated. Never nil.
	Logger *slog.Logger

	Member platform.Member
	Config Config

	Approved         bool
	ApprovalReasons  []string
	RejectionReasons []string

	engine *Engine

	usernames       []string
	usernamesLoaded bool
}

func (e *Engine) NewContext(ctx context.Context, member platform.Member, config Config) *Context {
	return &Context{
		Ctx:      ctx,
		Logger:   e.Logger.With("user", member.UserID, "community", member.CommunityID),
		Member:   member,
		Config:   config,
		Approved: true,
		engine:   e,
	}
}

func (c *Context) AddApprovalReason(reason string) {
	c.ApprovalReasons = append(c.ApprovalReasons, reason)
	c.Approved = true
}

func (c *Context) AddRejectionReason(reason string) {
	c.RejectionReasons = append(c.RejectionReasons, reason)
	c.Approved = false
}

// Usernames returns the member's current username plus every historical
// username on record. Computed at most once per Context.
func (c *Context) Usernames() ([]string, error) {
	if c.usernamesLoaded {
		return c.usernames, nil
	}
	names := []string{}
	if c.Member.Username != "" {
		names = append(names, c.Member.Username)
	}
	if c.engine.Names != nil {
		hist, err := c.engine.Names.UsernamesOf(c.Ctx, c.Member.UserID)
		if err != nil {
			return nil, err
		}
		for _, h := range hist {
			if h != c.Member.Username {
				names = append(names, h)
			}
		}
	}
	c.usernames = names
	c.usernamesLoaded = true
	return names, nil
}

// BotUserID returns the id of the deployment's own account.
func (c *Context) BotUserID() string {
	return c.engine.Platform.BotUserID()
}

// BotOwnerID returns the id of the deployment operator's account, empty if
// unconfigured.
func (c *Context) BotOwnerID() string {
	return c.engine.BotOwnerID
}

// Communities lists every community the deployment serves.
func (c *Context) Communities() ([]platform.Community, error) {
	return c.engine.Platform.Communities(c.Ctx)
}

// UserBans queries the ban store for this user across the given
// communities.
func (c *Context) UserBans(communityIDs []string) ([]banstore.BanRecord, error) {
	if c.engine.Bans == nil {
		return nil, nil
	}
	return c.engine.Bans.BansForUser(c.Ctx, c.Member.UserID, communityIDs)
}

// CommunityBans returns the ban records on store for this community.
func (c *Context) CommunityBans() ([]banstore.BanRecord, error) {
	if c.engine.Bans == nil {
		return nil, nil
	}
	return c.engine.Bans.BansForCommunity(c.Ctx, c.Member.CommunityID)
}

// HistoricUsernames returns every username on record for each of the
// given users.
func (c *Context) HistoricUsernames(userIDs []string) (map[string][]string, error) {
	if c.engine.Names == nil {
		return map[string][]string{}, nil
	}
	return c.engine.Names.UsernamesOfMany(c.Ctx, userIDs)
}

// BotPermissions resolves the bot account's permission bits in this
// community.
func (c *Context) BotPermissions() (platform.Permissions, error) {
	return c.engine.Platform.BotPermissions(c.Ctx, c.Member.CommunityID)
}

// CommunityBanList returns the current ban list of this community.
// Requires ban permission.
func (c *Context) CommunityBanList() ([]platform.BanEntry, error) {
	return c.engine.Platform.BanList(c.Ctx, c.Member.CommunityID)
}

// EachCommunityMember streams this community's membership page by page,
// calling fn for each member. The full set is never materialized.
func (c *Context) EachCommunityMember(fn func(platform.Member) error) error {
	return c.engine.eachMember(c.Ctx, c.Member.CommunityID, fn)
}

// LockdownActive reports whether this community is currently locked down.
func (c *Context) LockdownActive() (bool, error) {
	if c.engine.Lockdowns == nil {
		return false, nil
	}
	return c.engine.Lockdowns.IsActive(c.Ctx, c.Member.CommunityID)
}
