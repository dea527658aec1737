package banstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Row model for the bans table. The event layer appends rows as bans are
// observed; this package only reads them.
type Ban struct {
	ID          uint   `gorm:"primarykey"`
	CommunityID string `gorm:"index:idx_ban_community;index:idx_ban_community_user,unique"`
	UserID      string `gorm:"index:idx_ban_user;index:idx_ban_community_user,unique"`
	Reason      *string
	CreatedAt   time.Time
}

type GormBanStore struct {
	db *gorm.DB
}

func NewGormBanStore(db *gorm.DB) (*GormBanStore, error) {
	if err := db.AutoMigrate(&Ban{}); err != nil {
		return nil, fmt.Errorf("migrating ban table: %w", err)
	}
	return &GormBanStore{db: db}, nil
}

var _ BanStore = (*GormBanStore)(nil)

func (s *GormBanStore) BansForUser(ctx context.Context, userID string, communityIDs []string) ([]BanRecord, error) {
	if len(communityIDs) == 0 {
		return nil, nil
	}
	var rows []Ban
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND community_id IN ?", userID, communityIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying user bans: %w", err)
	}
	return banRecords(rows), nil
}

func (s *GormBanStore) BansForCommunity(ctx context.Context, communityID string) ([]BanRecord, error) {
	var rows []Ban
	err := s.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying community bans: %w", err)
	}
	return banRecords(rows), nil
}

func banRecords(rows []Ban) []BanRecord {
	out := make([]BanRecord, 0, len(rows))
	for _, r := range rows {
		rec := BanRecord{CommunityID: r.CommunityID, UserID: r.UserID}
		if r.Reason != nil {
			rec.Reason = *r.Reason
		}
		out = append(out, rec)
	}
	return out
}
