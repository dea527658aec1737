// Package configstore persists per-community validation policy. It backs
// the engine's ConfigSource with gorm; deployments configured entirely
// from flags can use the static source in the admission package instead.
package configstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wardenbot/warden/admission"
)

type CommunityConfig struct {
	CommunityID string `gorm:"primarykey"`
	Enabled     bool
	TrustRoleID string
	// Seconds; null disables purge eligibility for the community.
	KickUnverifiedAfterSecs *int64
	UpdatedAt               time.Time
}

type GormConfigStore struct {
	db *gorm.DB
}

func NewGormConfigStore(db *gorm.DB) (*GormConfigStore, error) {
	if err := db.AutoMigrate(&CommunityConfig{}); err != nil {
		return nil, fmt.Errorf("migrating community config table: %w", err)
	}
	return &GormConfigStore{db: db}, nil
}

var _ admission.ConfigSource = (*GormConfigStore)(nil)

// ValidationConfig returns nil for communities with no stored policy; the
// engine treats those as unconfigured and skips them.
func (s *GormConfigStore) ValidationConfig(ctx context.Context, communityID string) (*admission.Config, error) {
	var row CommunityConfig
	err := s.db.WithContext(ctx).First(&row, "community_id = ?", communityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying community config: %w", err)
	}
	config := &admission.Config{
		Enabled:     row.Enabled,
		TrustRoleID: row.TrustRoleID,
	}
	if row.KickUnverifiedAfterSecs != nil {
		d := time.Duration(*row.KickUnverifiedAfterSecs) * time.Second
		config.KickUnverifiedAfter = &d
	}
	return config, nil
}

// Set stores or replaces a community's policy.
func (s *GormConfigStore) Set(ctx context.Context, communityID string, config admission.Config) error {
	row := CommunityConfig{
		CommunityID: communityID,
		Enabled:     config.Enabled,
		TrustRoleID: config.TrustRoleID,
	}
	if config.KickUnverifiedAfter != nil {
		secs := int64(config.KickUnverifiedAfter.Seconds())
		row.KickUnverifiedAfterSecs = &secs
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "community_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"enabled", "trust_role_id", "kick_unverified_after_secs", "updated_at",
			}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("storing community config: %w", err)
	}
	return nil
}
