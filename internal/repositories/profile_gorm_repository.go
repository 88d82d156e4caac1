package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"contactbook/internal/errs"
	"contactbook/internal/models"
)

// GORMProfileRepository is a GORM implementation of ProfileRepository.
type GORMProfileRepository struct {
	db *gorm.DB
}

// NewGORMProfileRepository creates a new instance of GORMProfileRepository.
func NewGORMProfileRepository(db *gorm.DB) *GORMProfileRepository {
	return &GORMProfileRepository{
		db: db,
	}
}

// GetOrCreate returns the profile of userID, inserting a regular profile the
// first time it is asked for.
func (r *GORMProfileRepository) GetOrCreate(ctx context.Context, userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).
		Where(models.UserProfile{UserID: userID}).
		Attrs(models.UserProfile{Role: models.RoleRegular}).
		FirstOrCreate(&profile).Error
	if err == nil {
		return &profile, nil
	}
	// A concurrent request may have inserted the row first.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err == nil {
			return &profile, nil
		}
	}
	return nil, fmt.Errorf("failed to get or create profile for user %d: %w", userID, err)
}

// SetRole stores a new role on the user's profile.
func (r *GORMProfileRepository) SetRole(ctx context.Context, userID uint, role models.Role) error {
	res := r.db.WithContext(ctx).Model(&models.UserProfile{}).Where("user_id = ?", userID).Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("failed to set role for user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("profile of user %d: %w", userID, errs.ErrNotFound)
	}
	return nil
}
