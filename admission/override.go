package admission

import (
	"context"
	"errors"
	"fmt"

	"github.com/wardenbot/warden/platform"
)

// Reaction signals recognized on modlog decision messages.
type ReactionSignal string

const (
	ReactionApprove ReactionSignal = "✅" // white heavy check mark
	ReactionKick    ReactionSignal = "❌" // cross mark
	ReactionBan     ReactionSignal = "☠" // skull and crossbones
)

// ParseReactionSignal maps a raw reaction emoji onto a known signal.
func ParseReactionSignal(emoji string) (ReactionSignal, bool) {
	switch ReactionSignal(emoji) {
	case ReactionApprove, ReactionKick, ReactionBan:
		return ReactionSignal(emoji), true
	}
	return "", false
}

// HandleOverrideReaction maps a moderator reaction on a modlog decision
// message to a manual override action. Unauthorized or unresolvable
// signals are dropped silently; a recognized reaction is never latched,
// so repeated or contradictory reactions each fire independently.
func (e *Engine) HandleOverrideReaction(ctx context.Context, communityID, reactorID, targetID string, signal ReactionSignal) error {
	if targetID == "" {
		e.Logger.Debug("override reaction with unresolvable target", "community", communityID)
		return nil
	}
	if reactorID == e.Platform.BotUserID() {
		return nil
	}

	perms, err := e.Platform.MemberPermissions(ctx, communityID, reactorID)
	if err != nil {
		return fmt.Errorf("resolving reactor permissions: %w", err)
	}

	reactorName := reactorID
	if reactor, err := e.Platform.Member(ctx, communityID, reactorID); err == nil {
		reactorName = reactor.Username
	}

	switch signal {
	case ReactionApprove:
		if !perms.ManageRoles {
			return nil
		}
		overrideActions.WithLabelValues("approve").Inc()
		return e.approveByReaction(ctx, communityID, reactorName, targetID)
	case ReactionKick:
		if !perms.KickMembers {
			return nil
		}
		overrideActions.WithLabelValues("kick").Inc()
		return e.removeByReaction(ctx, communityID, reactorName, targetID, false)
	case ReactionBan:
		if !perms.BanMembers {
			return nil
		}
		overrideActions.WithLabelValues("ban").Inc()
		return e.removeByReaction(ctx, communityID, reactorName, targetID, true)
	}
	return nil
}

func (e *Engine) approveByReaction(ctx context.Context, communityID, reactorName, targetID string) error {
	config, err := e.resolveConfig(ctx, communityID)
	if err != nil {
		return err
	}
	target, err := e.Platform.Member(ctx, communityID, targetID)
	if err != nil {
		e.Logger.Info("override target not found", "target", targetID, "community", communityID)
		return nil
	}
	if config.TrustRoleID != "" && !target.HasRole(config.TrustRoleID) {
		err := e.Platform.AddRole(ctx, communityID, targetID, config.TrustRoleID)
		if errors.Is(err, platform.ErrPermissionDenied) {
			e.postModlogNote(ctx, communityID, fmt.Sprintf(
				"%s Attempted to verify %s and failed. Bot does not have "+
					"**Manage Roles** permission.", ReactionApprove, target.Username))
			return nil
		}
		if err != nil {
			return fmt.Errorf("granting trust role: %w", err)
		}
	}
	e.postModlogNote(ctx, communityID, fmt.Sprintf(
		"%s **%s** manually verified **%s** via reaction.",
		ReactionApprove, reactorName, target.Username))
	e.Logger.Info("member manually verified via reaction",
		"target", targetID, "reactor", reactorName, "community", communityID)
	return nil
}

func (e *Engine) removeByReaction(ctx context.Context, communityID, reactorName, targetID string, ban bool) error {
	target, err := e.Platform.Member(ctx, communityID, targetID)
	if err != nil {
		e.Logger.Info("override target not found", "target", targetID, "community", communityID)
		return nil
	}

	signal, verb, verbPast, permName := ReactionKick, "kick", "kicked", "Kick Members"
	action := e.Platform.Kick
	if ban {
		signal, verb, verbPast, permName = ReactionBan, "ban", "banned", "Ban Members"
		action = e.Platform.Ban
	}

	reason := fmt.Sprintf("Failed verification. Manually %s by %s.", verbPast, reactorName)
	err = action(ctx, communityID, targetID, reason)
	if errors.Is(err, platform.ErrPermissionDenied) {
		e.postModlogNote(ctx, communityID, fmt.Sprintf(
			"%s Attempted to %s %s and failed. Bot does not have **%s** permission.",
			signal, verb, target.Username, permName))
		return nil
	}
	if err != nil {
		return fmt.Errorf("removing member: %w", err)
	}
	e.postModlogNote(ctx, communityID, fmt.Sprintf(
		"%s **%s** %s **%s** via reaction during manual verification.",
		signal, reactorName, verbPast, target.Username))
	e.Logger.Info("member removed via reaction",
		"target", targetID, "reactor", reactorName, "ban", ban, "community", communityID)
	return nil
}
