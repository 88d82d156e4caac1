package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"contactbook/internal/errs"
	"contactbook/internal/models"
	"contactbook/internal/repositories"
	"contactbook/internal/validation"
)

var (
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = fmt.Errorf("username already exists: %w", errs.ErrConflict)
	// ErrEmailTaken is returned when registering an existing email.
	ErrEmailTaken = fmt.Errorf("email already exists: %w", errs.ErrConflict)
)

// RegisterInput is the data accepted when a new account is created.
type RegisterInput struct {
	Username        string `json:"username" form:"username" validate:"required,min=3,max=150"`
	Email           string `json:"email" form:"email" validate:"required,email,max=254"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"omitempty,eqfield=Password"`
}

// AuthConfig holds the secrets and costs used by AuthService.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthService handles registration, password checks and API tokens.
type AuthService struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	validate    *validator.Validate
	jwtSecret   []byte
	tokenDurat  time.Duration // Duration for which JWT is valid
	bcryptCost  int
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, profileRepo repositories.ProfileRepository, cfg AuthConfig) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		validate:    validation.New(),
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenDurat:  cfg.TokenTTL,
		bcryptCost:  cfg.BcryptCost,
	}
}

// RegisterUser validates the input, rejects taken usernames and emails, hashes
// the password and stores the user with a regular profile.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	// Check if username or email already exists
	if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hashedPassword,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	profile, err := s.profileRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

// Authenticate checks a username/password pair. Every failure, including an
// unknown username or an inactive account, is reported as
// errs.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errs.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, errs.ErrInvalidCredentials
	}
	return user, nil
}

// LoginUser authenticates a user and returns a JWT token if successful.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.IssueToken(user)
}

// IssueToken signs an HS256 token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// UserIDFromClaims extracts the numeric user_id claim.
func UserIDFromClaims(claims jwt.MapClaims) (uint, bool) {
	// encoding/json decodes numbers into float64
	v, ok := claims["user_id"].(float64)
	if !ok || v < 1 {
		return 0, false
	}
	return uint(v), true
}

// HashPassword returns the bcrypt hash of plain at the given cost.
func HashPassword(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}
