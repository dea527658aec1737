package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wardenbot/warden/admission"
)

type joinEventBody struct {
	CommunityID string `json:"communityId"`
	UserID      string `json:"userId"`
}

// handleJoinEvent runs the admission pipeline for a member join. The
// gateway sends ids only; the member snapshot is always fetched fresh.
func (s *Server) handleJoinEvent(c echo.Context) error {
	ctx := c.Request().Context()
	var body joinEventBody
	if err := c.Bind(&body); err != nil {
		return c.String(http.StatusBadRequest, "invalid body")
	}
	if body.CommunityID == "" || body.UserID == "" {
		return c.String(http.StatusBadRequest, "communityId and userId required")
	}
	member, err := s.engine.Platform.Member(ctx, body.CommunityID, body.UserID)
	if err != nil {
		s.logger.Warn("join event for unresolvable member", "err", err,
			"community", body.CommunityID, "user", body.UserID)
		return c.NoContent(http.StatusAccepted)
	}
	if err := s.engine.ProcessJoin(ctx, *member); err != nil {
		s.logger.Error("processing join failed", "err", err,
			"community", body.CommunityID, "user", body.UserID)
		return c.String(http.StatusInternalServerError, "processing failed")
	}
	return c.NoContent(http.StatusAccepted)
}

type reactionEventBody struct {
	CommunityID string `json:"communityId"`
	ReactorID   string `json:"reactorId"`
	// The identity marker from the decision message the reaction landed
	// on. Empty if the message carried none.
	MarkerUserID string `json:"markerUserId"`
	Emoji        string `json:"emoji"`
}

func (s *Server) handleReactionEvent(c echo.Context) error {
	ctx := c.Request().Context()
	var body reactionEventBody
	if err := c.Bind(&body); err != nil {
		return c.String(http.StatusBadRequest, "invalid body")
	}
	signal, ok := admission.ParseReactionSignal(body.Emoji)
	if !ok {
		return c.NoContent(http.StatusAccepted)
	}
	err := s.engine.HandleOverrideReaction(ctx, body.CommunityID, body.ReactorID, body.MarkerUserID, signal)
	if err != nil {
		s.logger.Error("handling override reaction failed", "err", err,
			"community", body.CommunityID, "reactor", body.ReactorID)
		return c.String(http.StatusInternalServerError, "processing failed")
	}
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) handleVerify(c echo.Context) error {
	ctx := c.Request().Context()
	result, err := s.engine.Verify(ctx, c.Param("community"), c.Param("user"))
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"approved":         result.Approved,
		"approvalReasons":  result.ApprovalReasons,
		"rejectionReasons": result.RejectionReasons,
	})
}

func (s *Server) handlePropagate(c echo.Context) error {
	ctx := c.Request().Context()
	updated, err := s.engine.PropagateTrustRole(ctx, c.Param("community"))
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"updated": updated})
}

// purgeCutoff resolves the staleness cutoff for a purge: an explicit
// "lookback" query param wins, then the community's configured window.
func (s *Server) purgeCutoff(c echo.Context, communityID string) (time.Time, error) {
	if raw := c.QueryParam("lookback"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid lookback duration: %w", err)
		}
		return time.Now().Add(-d), nil
	}
	config, err := s.configs.ValidationConfig(c.Request().Context(), communityID)
	if err != nil {
		return time.Time{}, err
	}
	if config == nil || config.KickUnverifiedAfter == nil {
		return time.Time{}, fmt.Errorf("no lookback given and no purge window configured")
	}
	return time.Now().Add(-*config.KickUnverifiedAfter), nil
}

func (s *Server) handlePurgeScan(c echo.Context) error {
	communityID := c.Param("community")
	cutoff, err := s.purgeCutoff(c, communityID)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	found, err := s.engine.ScanPurge(c.Request().Context(), communityID, cutoff)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"kickable": found,
		"cutoff":   cutoff,
	})
}

func (s *Server) handlePurgeExecute(c echo.Context) error {
	communityID := c.Param("community")
	cutoff, err := s.purgeCutoff(c, communityID)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	removed, err := s.engine.ExecutePurge(c.Request().Context(), communityID, cutoff)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"removed": removed,
		"cutoff":  cutoff,
	})
}

type lockdownBody struct {
	// Duration string, e.g. "30m". Required.
	Duration string `json:"duration"`
}

func (s *Server) handleLockdownActivate(c echo.Context) error {
	var body lockdownBody
	if err := c.Bind(&body); err != nil {
		return c.String(http.StatusBadRequest, "invalid body")
	}
	d, err := time.ParseDuration(body.Duration)
	if err != nil || d <= 0 {
		return c.String(http.StatusBadRequest, "positive duration required")
	}
	expiresAt := time.Now().Add(d)
	if err := s.engine.ActivateLockdown(c.Request().Context(), c.Param("community"), expiresAt); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"expiresAt": expiresAt})
}

func (s *Server) handleLockdownDeactivate(c echo.Context) error {
	if err := s.engine.DeactivateLockdown(c.Request().Context(), c.Param("community")); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type configBody struct {
	Enabled                 bool   `json:"enabled"`
	TrustRoleID             string `json:"trustRoleId"`
	KickUnverifiedAfterSecs *int64 `json:"kickUnverifiedAfterSecs"`
}

func (s *Server) handleConfigSet(c echo.Context) error {
	var body configBody
	if err := c.Bind(&body); err != nil {
		return c.String(http.StatusBadRequest, "invalid body")
	}
	config := admission.Config{
		Enabled:     body.Enabled,
		TrustRoleID: body.TrustRoleID,
	}
	if body.KickUnverifiedAfterSecs != nil {
		d := time.Duration(*body.KickUnverifiedAfterSecs) * time.Second
		config.KickUnverifiedAfter = &d
	}
	if err := s.configs.Set(c.Request().Context(), c.Param("community"), config); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
