package admission

// Approvers run late in the chain and only ever approve; each keys off a
// single platform signal.

// Approves accounts with a premium subscription; paid accounts are
// unlikely to be alts or user bots.
type NitroApprover struct{}

func (a *NitroApprover) Name() string { return "nitro" }

func (a *NitroApprover) Validate(c *Context) error {
	if c.Member.Premium {
		c.AddApprovalReason("User has Nitro. Probably not a user bot.")
	}
	return nil
}

// Approves platform-verified, partnered, or staff accounts.
type DistinguishedUserApprover struct{}

func (a *DistinguishedUserApprover) Name() string { return "distinguished-user" }

func (a *DistinguishedUserApprover) Validate(c *Context) error {
	if c.Member.Distinguished {
		c.AddApprovalReason("User is distinguished (verified, partnered, or staff).")
	}
	return nil
}

// Approves bot accounts; they can only be added by a moderator in the
// first place.
type BotApprover struct{}

func (a *BotApprover) Name() string { return "bot" }

func (a *BotApprover) Validate(c *Context) error {
	if c.Member.Bot {
		c.AddApprovalReason("User is a bot and can only be added by moderators.")
	}
	return nil
}

// Approves the deployment operator's own account.
type BotOwnerApprover struct{}

func (a *BotOwnerApprover) Name() string { return "bot-owner" }

func (a *BotOwnerApprover) Validate(c *Context) error {
	if c.BotOwnerID() != "" && c.Member.UserID == c.BotOwnerID() {
		c.AddApprovalReason("User is the bot owner.")
	}
	return nil
}
