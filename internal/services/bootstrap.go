package services

import (
	"context"
	"errors"
	"fmt"

	"contactbook/internal/errs"
	"contactbook/internal/models"
	"contactbook/internal/repositories"
)

// AdminOptions describes the administrator account guaranteed at startup.
type AdminOptions struct {
	Username string
	Email    string
	Password string
	// ResetPassword overwrites the password of an existing account.
	ResetPassword bool
	BcryptCost    int
}

// BootstrapResult reports what EnsureAdmin changed.
type BootstrapResult struct {
	Created       bool
	RoleRestored  bool
	PasswordReset bool
}

// EnsureAdmin makes sure an account named opts.Username exists and holds the
// admin role. It is idempotent: a second call with the same options changes
// nothing.
func EnsureAdmin(ctx context.Context, users repositories.UserRepository, profiles repositories.ProfileRepository, opts AdminOptions) (BootstrapResult, error) {
	var res BootstrapResult
	if opts.Username == "" {
		return res, errors.New("admin username is required")
	}

	user, err := users.GetByUsername(ctx, opts.Username)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		hash, err := HashPassword(opts.Password, opts.BcryptCost)
		if err != nil {
			return res, err
		}
		user = &models.User{Username: opts.Username, Email: opts.Email, Password: hash, IsActive: true}
		if err := users.Create(ctx, user); err != nil {
			return res, fmt.Errorf("create admin user: %w", err)
		}
		res.Created = true
	case err != nil:
		return res, err
	}

	profile, err := profiles.GetOrCreate(ctx, user.ID)
	if err != nil {
		return res, err
	}
	if profile.Role != models.RoleAdmin {
		if err := profiles.SetRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return res, err
		}
		res.RoleRestored = !res.Created
	}

	if !res.Created && opts.ResetPassword {
		hash, err := HashPassword(opts.Password, opts.BcryptCost)
		if err != nil {
			return res, err
		}
		if err := users.UpdatePassword(ctx, user.ID, hash); err != nil {
			return res, err
		}
		res.PasswordReset = true
	}
	return res, nil
}
