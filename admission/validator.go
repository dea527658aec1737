package admission

import (
	"time"

	"github.com/wardenbot/warden/admission/keyword"
	"github.com/wardenbot/warden/platform"
)

// A Validator is one unit of admission policy. Implementations communicate
// only by mutating the Context (adding reasons) or doing nothing; a
// returned error (or panic) is an unexpected fault, not a rejection, and
// never aborts the chain.
type Validator interface {
	Name() string
	Validate(c *Context) error
}

// Options for the canonical validator chain. Filter lists come from
// deployment configuration.
type ChainOpts struct {
	UserBotNames          []string
	UserBotNamesFullMatch []string
	OffensiveUsernames    []string
	SexualUsernames       []string

	// Zero values take the defaults below.
	NewAccountLookback time.Duration // 30 days
	MinCommunitySize   int           // 150
	NameMatchMinLength int           // 4

	// Predicates for the name-proximity rejectors.
	IsModerator func(platform.Member) bool
	IsBot       func(platform.Member) bool
}

const (
	defaultNewAccountLookback = 30 * 24 * time.Hour
	defaultMinCommunitySize   = 150
	defaultNameMatchMinLength = 4
)

// DefaultValidators builds the canonical chain. Order is significant and
// deliberate: low-confidence suspicion checks run first, then
// higher-confidence checks on questionable content, then high-confidence
// malice checks, then override-level approvers last — so a legitimate
// distinguished, bot, or operator account always wins the verdict even
// after earlier false-positive rejections, while the full reason trail is
// retained.
func DefaultValidators(opts ChainOpts) ([]Validator, error) {
	if opts.NewAccountLookback == 0 {
		opts.NewAccountLookback = defaultNewAccountLookback
	}
	if opts.MinCommunitySize == 0 {
		opts.MinCommunitySize = defaultMinCommunitySize
	}
	if opts.NameMatchMinLength == 0 {
		opts.NameMatchMinLength = defaultNameMatchMinLength
	}
	if opts.IsModerator == nil {
		opts.IsModerator = func(m platform.Member) bool { return m.Moderator }
	}
	if opts.IsBot == nil {
		opts.IsBot = func(m platform.Member) bool { return m.Bot }
	}

	userBot, err := keyword.CompileFilters(opts.UserBotNames)
	if err != nil {
		return nil, err
	}
	userBotFull, err := keyword.CompileFilters(opts.UserBotNamesFullMatch)
	if err != nil {
		return nil, err
	}
	offensive, err := keyword.CompileFilters(opts.OffensiveUsernames)
	if err != nil {
		return nil, err
	}
	sexual, err := keyword.CompileFilters(opts.SexualUsernames)
	if err != nil {
		return nil, err
	}

	return []Validator{
		// Suspicion level: high recall, low precision. False positives
		// expected; these are low-severity signals.

		// New accounts are commonly alts of banned users.
		&NewAccountRejector{Lookback: opts.NewAccountLookback},
		// Low-effort user bots and alts tend not to set an avatar.
		&NoAvatarRejector{},
		// A seemingly deleted account joining a community is suspicious.
		&DeletedAccountRejector{},
		// Likely user bots by username.
		&StringFilterRejector{Prefix: "Likely user bot. ", Filters: userBot},
		&StringFilterRejector{Prefix: "Likely user bot. ", Filters: userBotFull, FullMatch: true},
		// A premium subscription makes an alt or user bot unlikely.
		&NitroApprover{},

		// Questionable level: usernames that impersonate trusted accounts
		// or carry unacceptable content.
		&NameMatchRejector{
			Prefix:         "Username matches moderator's. ",
			Predicate:      opts.IsModerator,
			MinMatchLength: opts.NameMatchMinLength,
		},
		&NameMatchRejector{
			Prefix:         "Username matches moderator's. ",
			Predicate:      opts.IsModerator,
			SelectNick:     true,
			MinMatchLength: opts.NameMatchMinLength,
		},
		&NameMatchRejector{
			Prefix:         "Username matches bot's. ",
			Predicate:      opts.IsBot,
			MinMatchLength: opts.NameMatchMinLength,
		},
		&NameMatchRejector{
			Prefix:         "Username matches bot's. ",
			Predicate:      opts.IsBot,
			SelectNick:     true,
			MinMatchLength: opts.NameMatchMinLength,
		},
		&StringFilterRejector{Prefix: "Offensive username. ", Filters: offensive},
		&StringFilterRejector{Prefix: "Sexually inappropriate username. ", Filters: sexual},

		// Malice level: known offenders. Low recall, high precision.
		&BannedUserRejector{MinCommunitySize: opts.MinCommunitySize},
		&BannedUsernameRejector{},
		&DistinguishedUserApprover{},
		&LockdownRejector{},

		// Override level: targeted at specific accounts; these must win
		// regardless of anything above.
		&BotApprover{},
		&BotOwnerApprover{},
	}, nil
}
