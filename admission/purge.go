package admission

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wardenbot/warden/platform"
)

const (
	// Kicks are dispatched in bounded batches with a barrier between
	// them, as backpressure against platform rate limits.
	purgeBatchSize = 5

	purgeKickReason = "Unverified in sufficient time."
	purgeDMTemplate = "You have been kicked from %s due to not being verified within " +
		"sufficient time. If you feel this is in error, please contact a " +
		"mod regarding this."
)

// ScanPurge counts the members that ExecutePurge would remove, without
// mutating anything. Operators must be shown this count and confirm
// before ExecutePurge runs; that confirmation step belongs to the command
// layer, but the two-phase API shape is deliberate.
func (e *Engine) ScanPurge(ctx context.Context, communityID string, cutoff time.Time) (int, error) {
	return e.runPurge(ctx, communityID, cutoff, true)
}

// ExecutePurge removes every stale unverified member: a best-effort DM
// notice, then a kick with a fixed audit reason. Returns the number of
// members removed.
func (e *Engine) ExecutePurge(ctx context.Context, communityID string, cutoff time.Time) (int, error) {
	return e.runPurge(ctx, communityID, cutoff, false)
}

// purgeKickable is the candidate predicate: no trust role, joined before
// the cutoff, not a bot, not a paid booster.
func purgeKickable(m platform.Member, trustRoleID string, cutoff time.Time) bool {
	if m.HasRole(trustRoleID) {
		return false
	}
	if !m.JoinedAt.Before(cutoff) {
		return false
	}
	if m.Bot || m.BoosterSince != nil {
		return false
	}
	return true
}

func (e *Engine) runPurge(ctx context.Context, communityID string, cutoff time.Time, dryRun bool) (int, error) {
	config, err := e.resolveConfig(ctx, communityID)
	if err != nil {
		return 0, err
	}
	if config.TrustRoleID == "" {
		return 0, ErrNotConfigured
	}
	if !dryRun {
		perms, err := e.Platform.BotPermissions(ctx, communityID)
		if err != nil {
			return 0, fmt.Errorf("resolving bot permissions: %w", err)
		}
		if !perms.KickMembers {
			return 0, fmt.Errorf("purging %s: %w", communityID, platform.ErrPermissionDenied)
		}
	}

	community, err := e.Platform.Community(ctx, communityID)
	if err != nil {
		return 0, fmt.Errorf("resolving community: %w", err)
	}

	found := 0
	var removed int64
	batch := make([]platform.Member, 0, purgeBatchSize)

	err = e.eachMember(ctx, communityID, func(m platform.Member) error {
		if !purgeKickable(m, config.TrustRoleID, cutoff) {
			return nil
		}
		found++
		if dryRun {
			return nil
		}
		batch = append(batch, m)
		if len(batch) >= purgeBatchSize {
			// barrier: the whole batch completes before the next starts
			e.kickBatch(ctx, community.Name, batch, &removed)
			batch = batch[:0]
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !dryRun && len(batch) > 0 {
		e.kickBatch(ctx, community.Name, batch, &removed)
	}

	if dryRun {
		purgeScanned.Add(float64(found))
		e.Logger.Info("purge scan complete", "community", communityID, "kickable", found)
		return found, nil
	}
	e.Logger.Info("purge complete", "community", communityID, "removed", removed)
	return int(atomic.LoadInt64(&removed)), nil
}

// kickBatch removes one batch concurrently. Individual failures are
// logged and skipped; one refused kick must not strand the rest of the
// batch.
func (e *Engine) kickBatch(ctx context.Context, communityName string, batch []platform.Member, removed *int64) {
	g := new(errgroup.Group)
	for _, m := range batch {
		m := m
		g.Go(func() error {
			if e.KickLimiter != nil {
				if err := e.KickLimiter.Wait(ctx); err != nil {
					return nil
				}
			}
			// the user may have DMs disabled
			_ = e.Platform.SendDirectMessage(ctx, m.UserID, fmt.Sprintf(purgeDMTemplate, communityName))
			if err := e.Platform.Kick(ctx, m.CommunityID, m.UserID, purgeKickReason); err != nil {
				e.Logger.Warn("purge kick failed", "err", err,
					"user", m.UserID, "community", m.CommunityID)
				return nil
			}
			purgeKicks.Inc()
			atomic.AddInt64(removed, 1)
			e.Logger.Info("purged unverified member",
				"user", m.UserID, "community", m.CommunityID)
			return nil
		})
	}
	_ = g.Wait()
}
