package lockstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Lockdown struct {
	CommunityID string `gorm:"primarykey"`
	ExpiresAt   time.Time
	UpdatedAt   time.Time
}

type GormLockStore struct {
	db *gorm.DB
}

func NewGormLockStore(db *gorm.DB) (*GormLockStore, error) {
	if err := db.AutoMigrate(&Lockdown{}); err != nil {
		return nil, fmt.Errorf("migrating lockdown table: %w", err)
	}
	return &GormLockStore{db: db}, nil
}

var _ LockStore = (*GormLockStore)(nil)

func (s *GormLockStore) Get(ctx context.Context, communityID string) (*time.Time, error) {
	var row Lockdown
	err := s.db.WithContext(ctx).First(&row, "community_id = ?", communityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying lockdown state: %w", err)
	}
	t := row.ExpiresAt
	return &t, nil
}

func (s *GormLockStore) Set(ctx context.Context, communityID string, expiresAt time.Time) error {
	row := Lockdown{CommunityID: communityID, ExpiresAt: expiresAt}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "community_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"expires_at", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("storing lockdown state: %w", err)
	}
	return nil
}

func (s *GormLockStore) Clear(ctx context.Context, communityID string) error {
	err := s.db.WithContext(ctx).Delete(&Lockdown{}, "community_id = ?", communityID).Error
	if err != nil {
		return fmt.Errorf("clearing lockdown state: %w", err)
	}
	return nil
}
