package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"contactbook/internal/errs"
	"contactbook/internal/models"
	"contactbook/internal/services"
)

const testJWTSecret = "test_jwt_secret"

func newAuthService(users *MockUserRepository, profiles *MockProfileRepository) *services.AuthService {
	return services.NewAuthService(users, profiles, services.AuthConfig{
		JWTSecret:  testJWTSecret,
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
}

func TestAuthService_RegisterUser(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	profiles := new(MockProfileRepository)
	authService := newAuthService(users, profiles)

	in := services.RegisterInput{
		Username:        " testuser ",
		Email:           "test@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	}

	users.On("GetByUsername", ctx, "testuser").Return(nil, errs.ErrNotFound).Once()
	users.On("GetByEmail", ctx, "test@example.com").Return(nil, errs.ErrNotFound).Once()
	users.On("Create", ctx, mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 5
	}).Return(nil).Once()
	profiles.On("GetOrCreate", ctx, uint(5)).Return(&models.UserProfile{UserID: 5, Role: models.RoleRegular}, nil).Once()

	user, err := authService.RegisterUser(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "password123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	assert.Equal(t, models.RoleRegular, user.Profile.Role)
	users.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestAuthService_RegisterUserConflicts(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	authService := newAuthService(users, new(MockProfileRepository))
	in := services.RegisterInput{Username: "testuser", Email: "test@example.com", Password: "password123"}

	// Test username already taken
	users.On("GetByUsername", ctx, "testuser").Return(&models.User{ID: 1}, nil).Once()
	_, err := authService.RegisterUser(ctx, in)
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
	assert.ErrorIs(t, err, errs.ErrConflict)

	// Test email already registered
	users.On("GetByUsername", ctx, "testuser").Return(nil, errs.ErrNotFound).Once()
	users.On("GetByEmail", ctx, "test@example.com").Return(&models.User{ID: 1}, nil).Once()
	_, err = authService.RegisterUser(ctx, in)
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	users.AssertExpectations(t)
}

func TestAuthService_RegisterUserValidation(t *testing.T) {
	users := new(MockUserRepository)
	authService := newAuthService(users, new(MockProfileRepository))

	_, err := authService.RegisterUser(context.Background(), services.RegisterInput{
		Username:        "ab",
		Email:           "not-an-email",
		Password:        "password123",
		PasswordConfirm: "different",
	})
	verr, ok := errs.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "email")
	assert.Equal(t, "Passwords do not match", verr.Fields["password_confirm"])
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_LoginUser(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	authService := newAuthService(users, new(MockProfileRepository))

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: 42, Username: "testuser", Password: string(hashedPassword), IsActive: true}

	// Test successful login
	users.On("GetByUsername", ctx, "testuser").Return(user, nil).Once()
	token, err := authService.LoginUser(ctx, "testuser", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	id, ok := services.UserIDFromClaims(claims)
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "testuser", claims["username"])

	// Test wrong password
	users.On("GetByUsername", ctx, "testuser").Return(user, nil).Once()
	_, err = authService.LoginUser(ctx, "testuser", "wrongpassword")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)

	// Test unknown user
	users.On("GetByUsername", ctx, "nouser").Return(nil, errs.ErrNotFound).Once()
	_, err = authService.LoginUser(ctx, "nouser", "password123")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)

	// Test inactive account
	inactive := *user
	inactive.IsActive = false
	users.On("GetByUsername", ctx, "testuser").Return(&inactive, nil).Once()
	_, err = authService.LoginUser(ctx, "testuser", "password123")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)

	// Storage failures are not hidden behind invalid credentials
	users.On("GetByUsername", ctx, "broken").Return(nil, errors.New("db down")).Once()
	_, err = authService.LoginUser(ctx, "broken", "password123")
	assert.EqualError(t, err, "db down")
	users.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := newAuthService(new(MockUserRepository), new(MockProfileRepository))

	// Test expired token
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	tokenString, err := expired.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = authService.ValidateToken(tokenString)
	assert.Error(t, err)

	// Test token signed with another secret
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err = forged.SignedString([]byte("another_secret"))
	require.NoError(t, err)
	_, err = authService.ValidateToken(tokenString)
	assert.Error(t, err)

	// Test malformed token
	_, err = authService.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestUserIDFromClaims(t *testing.T) {
	_, ok := services.UserIDFromClaims(jwt.MapClaims{})
	assert.False(t, ok)
	_, ok = services.UserIDFromClaims(jwt.MapClaims{"user_id": "7"})
	assert.False(t, ok)
	id, ok := services.UserIDFromClaims(jwt.MapClaims{"user_id": float64(7)})
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)
}
