// File: internal/audit/repository.go
package audit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Repository persists auth events.
type Repository interface {
	Create(ctx context.Context, event *AuthEvent) error
	// DeleteOlderThan removes events created before the cutoff and returns
	// the number deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM audit repository, migrating the
// auth_events table if needed.
func NewGORMRepository(db *gorm.DB) (Repository, error) {
	if err := db.AutoMigrate(&AuthEvent{}); err != nil {
		return nil, fmt.Errorf("failed to migrate auth_events table: %w", err)
	}
	return &gormRepository{db: db}, nil
}

func (r *gormRepository) Create(ctx context.Context, event *AuthEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create auth event: %w", err)
	}
	return nil
}

func (r *gormRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&AuthEvent{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete auth events older than %s: %w", cutoff, result.Error)
	}
	return result.RowsAffected, nil
}
