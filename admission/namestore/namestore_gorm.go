package namestore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Username struct {
	ID         uint   `gorm:"primarykey"`
	UserID     string `gorm:"index:idx_username_user_name,unique"`
	Name       string `gorm:"index:idx_username_user_name,unique"`
	ObservedAt time.Time
}

type GormNameStore struct {
	db *gorm.DB
}

func NewGormNameStore(db *gorm.DB) (*GormNameStore, error) {
	if err := db.AutoMigrate(&Username{}); err != nil {
		return nil, fmt.Errorf("migrating username table: %w", err)
	}
	return &GormNameStore{db: db}, nil
}

var _ NameStore = (*GormNameStore)(nil)

func (s *GormNameStore) UsernamesOf(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Model(&Username{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("querying username history: %w", err)
	}
	return names, nil
}

func (s *GormNameStore) UsernamesOfMany(ctx context.Context, userIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []Username
	err := s.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying username history: %w", err)
	}
	for _, row := range rows {
		out[row.UserID] = append(out[row.UserID], row.Name)
	}
	return out, nil
}

func (s *GormNameStore) Observe(ctx context.Context, userID, name string) error {
	row := Username{UserID: userID, Name: name, ObservedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("recording username: %w", err)
	}
	return nil
}
