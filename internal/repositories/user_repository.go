package repositories

import (
	"context"

	"contactbook/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// List returns users ordered by id with their profiles preloaded.
	List(ctx context.Context, offset, limit int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	UpdatePassword(ctx context.Context, id uint, hash string) error
}

// ProfileRepository defines the interface for user profile data access.
type ProfileRepository interface {
	// GetOrCreate returns the user's profile, creating a regular one if missing.
	GetOrCreate(ctx context.Context, userID uint) (*models.UserProfile, error)
	SetRole(ctx context.Context, userID uint, role models.Role) error
}
