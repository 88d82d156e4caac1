package services

import (
	"context"
	"errors"

	"contactbook/internal/errs"
	"contactbook/internal/models"
	"contactbook/internal/pagination"
	"contactbook/internal/repositories"
)

// UserService resolves request identities and implements the admin-only user
// management operations.
type UserService struct {
	users    repositories.UserRepository
	profiles repositories.ProfileRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, profiles repositories.ProfileRepository) *UserService {
	return &UserService{
		users:    users,
		profiles: profiles,
	}
}

// Resolve builds the Caller for a stored user id. Missing or inactive users
// yield errs.ErrUnauthenticated.
func (s *UserService) Resolve(ctx context.Context, userID uint) (*models.Caller, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errs.ErrUnauthenticated
	}
	profile, err := s.profiles.GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return models.CallerFor(user, profile), nil
}

// ListUsers returns one page of users with their roles.
func (s *UserService) ListUsers(ctx context.Context, caller *models.Caller, page, size int) ([]models.User, pagination.Page, error) {
	if !caller.IsAdmin() {
		return nil, pagination.Page{}, errs.ErrForbidden
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, pagination.Page{}, err
	}
	p := pagination.New(total, page, size)
	users, err := s.users.List(ctx, p.Offset(), p.Size)
	if err != nil {
		return nil, pagination.Page{}, err
	}
	return users, p, nil
}

// GetUser returns a user with its profile, for the admin confirmation pages.
func (s *UserService) GetUser(ctx context.Context, caller *models.Caller, id uint) (*models.User, error) {
	if !caller.IsAdmin() {
		return nil, errs.ErrForbidden
	}
	return s.withProfile(ctx, id)
}

// Promote grants the admin role. Promoting an admin changes nothing and
// still succeeds.
func (s *UserService) Promote(ctx context.Context, caller *models.Caller, id uint) (*models.User, error) {
	if !caller.IsAdmin() {
		return nil, errs.ErrForbidden
	}
	return s.setRole(ctx, id, models.RoleAdmin)
}

// Demote revokes the admin role. Callers cannot demote themselves.
func (s *UserService) Demote(ctx context.Context, caller *models.Caller, id uint) (*models.User, error) {
	if !caller.IsAdmin() {
		return nil, errs.ErrForbidden
	}
	if id == caller.UserID {
		return nil, errs.ErrSelfDemotion
	}
	return s.setRole(ctx, id, models.RoleRegular)
}

func (s *UserService) setRole(ctx context.Context, id uint, role models.Role) (*models.User, error) {
	user, err := s.withProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Profile.Role == role {
		return user, nil
	}
	if err := s.profiles.SetRole(ctx, id, role); err != nil {
		return nil, err
	}
	user.Profile.Role = role
	return user, nil
}

func (s *UserService) withProfile(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}
