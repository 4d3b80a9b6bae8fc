// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"prepwise_backend/internal/common"
	"prepwise_backend/internal/shared"
)

// Repository is the user directory: one profile record per identity id,
// last-write-wins, no transactions across flows.
type Repository interface {
	// Create inserts a new record at the given identity id.
	Create(ctx context.Context, usr *shared.User) error
	// FindByID retrieves the record for an identity id. Returns
	// common.ErrNotFound when absent.
	FindByID(ctx context.Context, id string) (*shared.User, error)
	// ApplyPatch applies only the fields set on the patch. An empty patch is
	// a no-op and performs no write.
	ApplyPatch(ctx context.Context, id string, patch Patch) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts a new user record into the database.
func (r *gormRepository) Create(ctx context.Context, usr *shared.User) error {
	dbUser := SharedToDB(usr)
	if dbUser.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*dbUser.Email))
		dbUser.Email = &normalized
	}
	if dbUser.CreatedAt.IsZero() {
		dbUser.CreatedAt = time.Now()
	}
	if dbUser.UpdatedAt.IsZero() {
		dbUser.UpdatedAt = dbUser.CreatedAt
	}
	err := r.db.WithContext(ctx).Create(dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(strings.ToLower(err.Error()), "unique constraint") ||
			strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return common.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID retrieves a user record by identity id.
func (r *gormRepository) FindByID(ctx context.Context, id string) (*shared.User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found with this ID.")
		}
		return nil, err
	}
	return DBToShared(&userModel), nil
}

// ApplyPatch updates only the changed fields on an existing record.
func (r *gormRepository) ApplyPatch(ctx context.Context, id string, patch Patch) error {
	if patch.IsEmpty() {
		return nil
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.PhotoURL != nil {
		updates["photo_url"] = *patch.PhotoURL
	}
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("User not found with this ID.")
	}
	return nil
}
