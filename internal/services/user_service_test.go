package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"contactbook/internal/errs"
	"contactbook/internal/models"
	"contactbook/internal/services"
)

func TestUserService_Resolve(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	profiles := new(MockProfileRepository)
	service := services.NewUserService(users, profiles)

	users.On("GetByID", ctx, uint(1)).Return(&models.User{ID: 1, Username: "alice", IsActive: true}, nil).Once()
	profiles.On("GetOrCreate", ctx, uint(1)).Return(&models.UserProfile{UserID: 1, Role: models.RoleAdmin}, nil).Once()

	caller, err := service.Resolve(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", caller.Username)
	assert.True(t, caller.IsAdmin())

	// Test missing user
	users.On("GetByID", ctx, uint(2)).Return(nil, errs.ErrNotFound).Once()
	_, err = service.Resolve(ctx, 2)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	// Test inactive user
	users.On("GetByID", ctx, uint(3)).Return(&models.User{ID: 3, IsActive: false}, nil).Once()
	_, err = service.Resolve(ctx, 3)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	users.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestUserService_AdminOnly(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	service := services.NewUserService(users, new(MockProfileRepository))

	for _, caller := range []*models.Caller{nil, {}, alice} {
		_, _, err := service.ListUsers(ctx, caller, 1, 10)
		assert.ErrorIs(t, err, errs.ErrForbidden)
		_, err = service.GetUser(ctx, caller, 1)
		assert.ErrorIs(t, err, errs.ErrForbidden)
		_, err = service.Promote(ctx, caller, 1)
		assert.ErrorIs(t, err, errs.ErrForbidden)
		_, err = service.Demote(ctx, caller, 2)
		assert.ErrorIs(t, err, errs.ErrForbidden)
	}
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	service := services.NewUserService(users, new(MockProfileRepository))

	users.On("Count", ctx).Return(int64(12), nil).Once()
	users.On("List", ctx, 10, 10).Return([]models.User{{ID: 11}, {ID: 12}}, nil).Once()

	list, page, err := service.ListUsers(ctx, admin, 2, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, page.Number)
	assert.True(t, page.HasPrevious())
	users.AssertExpectations(t)
}

func TestUserService_Promote(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	profiles := new(MockProfileRepository)
	service := services.NewUserService(users, profiles)

	users.On("GetByID", ctx, uint(1)).Return(&models.User{ID: 1, Username: "alice"}, nil).Once()
	profiles.On("GetOrCreate", ctx, uint(1)).Return(&models.UserProfile{UserID: 1, Role: models.RoleRegular}, nil).Once()
	profiles.On("SetRole", ctx, uint(1), models.RoleAdmin).Return(nil).Once()

	user, err := service.Promote(ctx, admin, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Profile.Role)

	// Promoting an admin again is a no-op
	users.On("GetByID", ctx, uint(1)).Return(&models.User{ID: 1, Username: "alice"}, nil).Once()
	profiles.On("GetOrCreate", ctx, uint(1)).Return(&models.UserProfile{UserID: 1, Role: models.RoleAdmin}, nil).Once()
	user, err = service.Promote(ctx, admin, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Profile.Role)

	users.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestUserService_Demote(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	profiles := new(MockProfileRepository)
	service := services.NewUserService(users, profiles)

	_, err := service.Demote(ctx, admin, admin.UserID)
	assert.ErrorIs(t, err, errs.ErrSelfDemotion)

	users.On("GetByID", ctx, uint(5)).Return(&models.User{ID: 5}, nil).Once()
	profiles.On("GetOrCreate", ctx, uint(5)).Return(&models.UserProfile{UserID: 5, Role: models.RoleAdmin}, nil).Once()
	profiles.On("SetRole", ctx, uint(5), models.RoleRegular).Return(nil).Once()

	user, err := service.Demote(ctx, admin, 5)
	require.NoError(t, err)
	assert.Equal(t, models.RoleRegular, user.Profile.Role)

	// Test unknown user
	users.On("GetByID", ctx, uint(6)).Return(nil, errs.ErrNotFound).Once()
	_, err = service.Demote(ctx, admin, 6)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	users.AssertExpectations(t)
	profiles.AssertExpectations(t)
}
