package admission

import (
	"context"
	"fmt"
	"strings"
)

// buildDecisionMessage renders the audit message for one evaluation. The
// full reason trail is always included, even when a later approver
// overturned earlier rejections.
func buildDecisionMessage(c *Context) string {
	var b strings.Builder
	if c.Approved {
		fmt.Fprintf(&b, "Verified user: %s (%s).", c.Member.Username, c.Member.UserID)
	} else {
		fmt.Fprintf(&b, "User %s (%s) requires manual verification.",
			c.Member.Username, c.Member.UserID)
	}
	if len(c.ApprovalReasons) > 0 {
		b.WriteString("\nApproved for the following reasons:\n```\n")
		b.WriteString(bulletList(c.ApprovalReasons))
		b.WriteString("\n```")
	}
	if len(c.RejectionReasons) > 0 {
		b.WriteString("\nRejected for the following reasons:\n```\n")
		b.WriteString(bulletList(c.RejectionReasons))
		b.WriteString("\n```")
	}
	return b.String()
}

func bulletList(items []string) string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = "- " + item
	}
	return strings.Join(out, "\n")
}

// publishDecision posts the audit message with the evaluated user as the
// identity marker and seeds the override reactions so moderators can act
// with one click. Reaction seeding is best effort.
func (e *Engine) publishDecision(c *Context) error {
	content := buildDecisionMessage(c)
	msgID, err := e.Platform.PublishModlog(c.Ctx, c.Member.CommunityID, content, c.Member.UserID)
	if err != nil {
		return err
	}
	for _, signal := range []ReactionSignal{ReactionApprove, ReactionKick, ReactionBan} {
		if err := e.Platform.AddReaction(c.Ctx, c.Member.CommunityID, msgID, string(signal)); err != nil {
			c.Logger.Debug("seeding reaction failed", "err", err, "message", msgID)
			break
		}
	}
	return nil
}

// postModlogNote publishes a plain audit note with no identity marker.
func (e *Engine) postModlogNote(c context.Context, communityID, content string) {
	if _, err := e.Platform.PublishModlog(c, communityID, content, ""); err != nil {
		modlogPublishErrors.Inc()
		e.Logger.Warn("publishing modlog note failed", "err", err, "community", communityID)
	}
}
