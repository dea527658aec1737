package admission

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/wardenbot/warden/admission/keyword"
	"github.com/wardenbot/warden/platform"
)

// Rejects accounts created within the lookback window.
type NewAccountRejector struct {
	Lookback time.Duration
}

func (r *NewAccountRejector) Name() string { return "new-account" }

func (r *NewAccountRejector) Validate(c *Context) error {
	now := time.Now()
	if c.Member.CreatedAt.After(now.Add(-r.Lookback)) {
		c.AddRejectionReason(fmt.Sprintf("Account created less than %s",
			humanize.RelTime(now.Add(-r.Lookback), now, "ago", "")))
	}
	return nil
}

// Rejects accounts without an avatar image.
type NoAvatarRejector struct{}

func (r *NoAvatarRejector) Name() string { return "no-avatar" }

func (r *NoAvatarRejector) Validate(c *Context) error {
	if !c.Member.HasAvatar {
		c.AddRejectionReason("User has no avatar.")
	}
	return nil
}

var looseDeletedUsername = regexp.MustCompile(`(?i).*Deleted.*User.*`)

// Rejects accounts the platform marks deleted, and accounts whose
// usernames imitate the platform's deletion pattern without the deleted
// flag (faked deletion).
type DeletedAccountRejector struct{}

func (r *DeletedAccountRejector) Name() string { return "deleted-account" }

func (r *DeletedAccountRejector) Validate(c *Context) error {
	if c.Member.Deleted {
		c.AddRejectionReason(
			"Deleted users cannot be active. User has been deleted of " +
				"their own accord or for Trust and Safety reasons, or is " +
				"faking account deletion.")
		return nil
	}
	names, err := c.Usernames()
	if err != nil {
		return err
	}
	for _, name := range names {
		if looseDeletedUsername.MatchString(name) {
			c.AddRejectionReason(fmt.Sprintf(
				"%q mimics the platform's deletion pattern. User may have "+
					"attempted to fake account deletion.", name))
		}
	}
	return nil
}

// Rejects users whose selected field values match any of a predefined
// list of permissive filter patterns.
type StringFilterRejector struct {
	Prefix  string
	Filters []*keyword.Filter
	// FullMatch requires a pattern to cover the entire value; otherwise a
	// substring match suffices.
	FullMatch bool
	// FieldSelector yields the values to test. Defaults to the user's
	// known usernames.
	FieldSelector func(c *Context) ([]string, error)
}

func (r *StringFilterRejector) Name() string { return "string-filter" }

func (r *StringFilterRejector) Validate(c *Context) error {
	selector := r.FieldSelector
	if selector == nil {
		selector = func(c *Context) ([]string, error) { return c.Usernames() }
	}
	values, err := selector(c)
	if err != nil {
		return err
	}
	for _, val := range values {
		for _, f := range r.Filters {
			matched := f.Matches(val)
			if r.FullMatch {
				matched = f.MatchesFull(val)
			}
			if matched {
				c.AddRejectionReason(r.Prefix + fmt.Sprintf("Matches: `%s`", f.Original))
			}
		}
	}
	return nil
}

// Rejects users whose name is close to the name of an existing community
// member satisfying the predicate (moderators, bots). Candidate names are
// tokenized on camel-case and word boundaries; short tokens are ignored.
type NameMatchRejector struct {
	Prefix    string
	Predicate func(platform.Member) bool
	// SelectNick tests the evaluated user's nickname instead of their
	// username.
	SelectNick     bool
	MinMatchLength int
}

func (r *NameMatchRejector) Name() string { return "name-match" }

func (r *NameMatchRejector) Validate(c *Context) error {
	value := c.Member.Username
	if r.SelectNick {
		value = c.Member.Nick
	}
	if value == "" {
		return nil
	}

	tokens := map[string]bool{}
	err := c.EachCommunityMember(func(m platform.Member) error {
		if m.UserID == c.Member.UserID || !r.Predicate(m) {
			return nil
		}
		for _, tok := range keyword.TokenizeName(m.DisplayName()) {
			if len([]rune(tok)) >= r.MinMatchLength {
				tokens[tok] = true
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	sorted := make([]string, 0, len(tokens))
	for tok := range tokens {
		sorted = append(sorted, tok)
	}
	sort.Strings(sorted)

	for _, tok := range sorted {
		f, err := keyword.CompileFilter(tok)
		if err != nil {
			return err
		}
		if f.Matches(value) {
			c.AddRejectionReason(r.Prefix + fmt.Sprintf("Matches: `%s`", tok))
		}
	}
	return nil
}

// Rejects users banned in other communities served by this deployment.
// Only communities at or above the size threshold count; tiny communities
// are too easy to abuse as a ban source.
type BannedUserRejector struct {
	MinCommunitySize int
}

func (r *BannedUserRejector) Name() string { return "banned-user" }

func (r *BannedUserRejector) Validate(c *Context) error {
	communities, err := c.Communities()
	if err != nil {
		return err
	}
	sizes := make(map[string]int, len(communities))
	var ids []string
	for _, cm := range communities {
		if cm.ID == c.Member.CommunityID {
			continue
		}
		if cm.MemberCount >= r.MinCommunitySize {
			ids = append(ids, cm.ID)
			sizes[cm.ID] = cm.MemberCount
		}
	}
	if len(ids) == 0 {
		return nil
	}

	bans, err := c.UserBans(ids)
	if err != nil {
		return err
	}

	banned := false
	seen := map[string]bool{}
	for _, ban := range bans {
		// the community may have shrunk below the threshold since the id
		// list was built
		if sizes[ban.CommunityID] < r.MinCommunitySize {
			continue
		}
		banned = true
		if ban.Reason != "" && !seen[ban.Reason] {
			seen[ban.Reason] = true
			c.AddRejectionReason(fmt.Sprintf(
				"Banned on another server. Reason: `%s`.", ban.Reason))
		}
	}
	if banned && len(seen) == 0 {
		c.AddRejectionReason("Banned on another server.")
	}
	return nil
}

// Rejects users whose username exactly matches (case and whitespace
// insensitive) any username a locally banned user has ever gone by. Banned
// users come from the ban store; their name history comes from the
// username store, so a banned user who renamed before the ban still
// matches. The live platform ban list supplements both when the bot can
// read it.
type BannedUsernameRejector struct{}

func (r *BannedUsernameRejector) Name() string { return "banned-username" }

func (r *BannedUsernameRejector) Validate(c *Context) error {
	// normalized banned username -> ban reason (may be empty)
	banned := map[string]string{}

	records, err := c.CommunityBans()
	if err != nil {
		return err
	}
	if len(records) > 0 {
		ids := make([]string, 0, len(records))
		reasonOf := make(map[string]string, len(records))
		for _, rec := range records {
			ids = append(ids, rec.UserID)
			reasonOf[rec.UserID] = rec.Reason
		}
		history, err := c.HistoricUsernames(ids)
		if err != nil {
			return err
		}
		for userID, names := range history {
			for _, name := range names {
				key := keyword.Normalize(name)
				if _, ok := banned[key]; !ok {
					banned[key] = reasonOf[userID]
				}
			}
		}
	}

	perms, err := c.BotPermissions()
	if err != nil {
		return err
	}
	if perms.BanMembers {
		entries, err := c.CommunityBanList()
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.Username == "" {
				continue
			}
			key := keyword.Normalize(entry.Username)
			if _, ok := banned[key]; !ok {
				banned[key] = entry.Reason
			}
		}
	}
	if len(banned) == 0 {
		return nil
	}

	names, err := c.Usernames()
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, n := range names {
		key := keyword.Normalize(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		reason, ok := banned[key]
		if !ok {
			continue
		}
		if reason != "" {
			c.AddRejectionReason(fmt.Sprintf(
				"Exact username match with banned user: `%s`. Ban reason: `%s`.", n, reason))
		} else {
			c.AddRejectionReason(fmt.Sprintf(
				"Exact username match with banned user: `%s`.", n))
		}
	}
	return nil
}

// Rejects every user while the community is locked down.
type LockdownRejector struct{}

func (r *LockdownRejector) Name() string { return "lockdown" }

func (r *LockdownRejector) Validate(c *Context) error {
	active, err := c.LockdownActive()
	if err != nil {
		return err
	}
	if active {
		c.AddRejectionReason(
			"Lockdown enabled. All new joins must be manually verified.")
	}
	return nil
}
