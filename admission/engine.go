// Package admission implements the admission-control policy engine: an
// ordered validator chain evaluated against each member joining a
// community, plus the lockdown gate, purge job, and manual override
// handling that surround it.
package admission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/wardenbot/warden/admission/banstore"
	"github.com/wardenbot/warden/admission/namestore"
	"github.com/wardenbot/warden/platform"
)

// ErrNotConfigured indicates validation was invoked for a community with
// no policy set. No state is mutated.
var ErrNotConfigured = errors.New("admission: validation not configured for community")

const memberPageSize = 1000

// Runtime for executing the validator chain and recording admission
// decisions.
//
// All fields except Notifier, Bans, Names, Lockdowns, and KickLimiter
// must be non-nil.
type Engine struct {
	Logger     *slog.Logger
	Platform   platform.Client
	Configs    ConfigSource
	Bans       banstore.BanStore
	Names      namestore.NameStore
	Lockdowns  *LockdownController
	Validators []Validator
	Notifier   Notifier
	// Operator account id, used by BotOwnerApprover. Optional.
	BotOwnerID string
	// Throttle for purge kicks. Optional.
	KickLimiter *rate.Limiter
}

// Evaluate runs the validator chain over one member and returns the
// finished Context, holding the verdict and the full reason trail. The
// chain runs strictly in sequence; a validator fault is isolated, logged,
// reported to the operator channel, and the chain continues.
func (e *Engine) Evaluate(ctx context.Context, member platform.Member, config Config) (*Context, error) {
	if !config.Enabled {
		return nil, ErrNotConfigured
	}
	c := e.NewContext(ctx, member, config)
	for _, v := range e.Validators {
		if err := e.runValidator(c, v); err != nil {
			validatorFaults.WithLabelValues(v.Name()).Inc()
			c.Logger.Error("validator fault", "validator", v.Name(), "err", err)
			if e.Notifier != nil {
				if nerr := e.Notifier.NotifyFault(ctx, c, v.Name(), err); nerr != nil {
					c.Logger.Warn("operator notification failed", "err", nerr)
				}
			}
		}
	}
	if c.Approved {
		validationsProcessed.WithLabelValues("approved").Inc()
	} else {
		validationsProcessed.WithLabelValues("rejected").Inc()
	}
	return c, nil
}

// runValidator isolates one validator invocation: both returned errors
// and panics surface as a fault without unwinding the chain.
func (e *Engine) runValidator(c *Context, v Validator) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validator panic: %v", r)
		}
	}()
	return v.Validate(c)
}

// ProcessJoin handles a join or verification-trigger event end to end:
// evaluate, grant the trust role on approval, publish the modlog message,
// and seed the override reactions. Communities without a validation
// policy are skipped.
func (e *Engine) ProcessJoin(ctx context.Context, member platform.Member) error {
	// recover any panics from the full flow, as an HTTP server would
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error("admission event execution exception", "err", r,
				"user", member.UserID, "community", member.CommunityID)
		}
	}()

	config, err := e.resolveConfig(ctx, member.CommunityID)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			e.Logger.Debug("validation not configured, skipping join",
				"community", member.CommunityID)
			return nil
		}
		return err
	}

	if e.Names != nil {
		if err := e.Names.Observe(ctx, member.UserID, member.Username); err != nil {
			e.Logger.Warn("recording username failed", "err", err, "user", member.UserID)
		}
	}

	c, err := e.Evaluate(ctx, member, *config)
	if err != nil {
		return err
	}
	if err := e.applyTrustRole(c); err != nil {
		c.Logger.Warn("applying trust role failed", "err", err)
	}
	if err := e.publishDecision(c); err != nil {
		modlogPublishErrors.Inc()
		c.Logger.Warn("publishing modlog decision failed", "err", err)
	}
	c.Logger.Info("join processed",
		"approved", c.Approved,
		"approvalReasons", len(c.ApprovalReasons),
		"rejectionReasons", len(c.RejectionReasons))
	return nil
}

// Verify re-runs validation for one member on operator request and
// publishes the decision.
func (e *Engine) Verify(ctx context.Context, communityID, userID string) (*Context, error) {
	config, err := e.resolveConfig(ctx, communityID)
	if err != nil {
		return nil, err
	}
	member, err := e.Platform.Member(ctx, communityID, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving member: %w", err)
	}
	c, err := e.Evaluate(ctx, *member, *config)
	if err != nil {
		return nil, err
	}
	if err := e.applyTrustRole(c); err != nil {
		c.Logger.Warn("applying trust role failed", "err", err)
	}
	if err := e.publishDecision(c); err != nil {
		modlogPublishErrors.Inc()
		c.Logger.Warn("publishing modlog decision failed", "err", err)
	}
	return c, nil
}

// PropagateTrustRole grants the trust role to every current member
// lacking it. Returns the number of members updated.
func (e *Engine) PropagateTrustRole(ctx context.Context, communityID string) (int, error) {
	config, err := e.resolveConfig(ctx, communityID)
	if err != nil {
		return 0, err
	}
	if config.TrustRoleID == "" {
		return 0, ErrNotConfigured
	}
	updated := 0
	err = e.eachMember(ctx, communityID, func(m platform.Member) error {
		if m.HasRole(config.TrustRoleID) {
			return nil
		}
		if err := e.Platform.AddRole(ctx, communityID, m.UserID, config.TrustRoleID); err != nil {
			return fmt.Errorf("granting trust role to %s: %w", m.UserID, err)
		}
		updated++
		return nil
	})
	return updated, err
}

// ErrNoLockdowns indicates a lockdown operation on an engine running
// without a lockdown controller.
var ErrNoLockdowns = errors.New("admission: no lockdown controller configured")

// ActivateLockdown and DeactivateLockdown expose the lockdown gate at the
// engine surface.
func (e *Engine) ActivateLockdown(ctx context.Context, communityID string, expiresAt time.Time) error {
	if e.Lockdowns == nil {
		return ErrNoLockdowns
	}
	return e.Lockdowns.Activate(ctx, communityID, expiresAt)
}

func (e *Engine) DeactivateLockdown(ctx context.Context, communityID string) error {
	if e.Lockdowns == nil {
		return ErrNoLockdowns
	}
	return e.Lockdowns.Deactivate(ctx, communityID)
}

func (e *Engine) resolveConfig(ctx context.Context, communityID string) (*Config, error) {
	if e.Configs == nil {
		return nil, ErrNotConfigured
	}
	config, err := e.Configs.ValidationConfig(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("resolving validation config: %w", err)
	}
	if config == nil || !config.Enabled {
		return nil, ErrNotConfigured
	}
	return config, nil
}

// applyTrustRole grants the trust role when the verdict is approval. A
// role the member already has is left alone.
func (e *Engine) applyTrustRole(c *Context) error {
	if !c.Approved || c.Config.TrustRoleID == "" || c.Member.HasRole(c.Config.TrustRoleID) {
		return nil
	}
	return e.Platform.AddRole(c.Ctx, c.Member.CommunityID, c.Member.UserID, c.Config.TrustRoleID)
}

// eachMember streams a community's membership page by page without ever
// materializing the full set.
func (e *Engine) eachMember(ctx context.Context, communityID string, fn func(platform.Member) error) error {
	cursor := ""
	for {
		members, next, err := e.Platform.ListMembers(ctx, communityID, cursor, memberPageSize)
		if err != nil {
			return fmt.Errorf("listing members: %w", err)
		}
		for _, m := range members {
			if err := fn(m); err != nil {
				return err
			}
		}
		if next == "" {
			return nil
		}
		cursor = next
	}
}
