package admission

import (
	"context"
	"log/slog"
	"time"

	"github.com/wardenbot/warden/admission/lockstore"
)

// LockdownController gates admissions per community with a stored expiry.
// Expiry is checked lazily at query time; no background timer runs, and
// none is needed for correct behavior.
type LockdownController struct {
	Store  lockstore.LockStore
	Logger *slog.Logger
}

func NewLockdownController(store lockstore.LockStore, logger *slog.Logger) *LockdownController {
	if logger == nil {
		logger = slog.Default()
	}
	return &LockdownController{Store: store, Logger: logger}
}

func (l *LockdownController) Activate(ctx context.Context, communityID string, expiresAt time.Time) error {
	if err := l.Store.Set(ctx, communityID, expiresAt); err != nil {
		return err
	}
	lockdownChanges.WithLabelValues("activate").Inc()
	l.Logger.Info("lockdown activated", "community", communityID, "expiresAt", expiresAt)
	return nil
}

func (l *LockdownController) Deactivate(ctx context.Context, communityID string) error {
	if err := l.Store.Clear(ctx, communityID); err != nil {
		return err
	}
	lockdownChanges.WithLabelValues("deactivate").Inc()
	l.Logger.Info("lockdown lifted", "community", communityID)
	return nil
}

// IsActive reports whether a stored expiry exists and is in the future.
// An expired entry means inactive; no explicit deactivation is required.
func (l *LockdownController) IsActive(ctx context.Context, communityID string) (bool, error) {
	expiresAt, err := l.Store.Get(ctx, communityID)
	if err != nil {
		return false, err
	}
	return expiresAt != nil && time.Now().Before(*expiresAt), nil
}
