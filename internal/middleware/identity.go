package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"contactbook/internal/errs"
	"contactbook/internal/models"
	"contactbook/internal/services"
	"contactbook/internal/session"
)

const callerKey = "caller"

// CallerResolver builds the request identity for a stored user id.
// *services.UserService implements it.
type CallerResolver interface {
	Resolve(ctx context.Context, userID uint) (*models.Caller, error)
}

// TokenValidator checks bearer tokens. *services.AuthService implements it.
type TokenValidator interface {
	ValidateToken(token string) (jwt.MapClaims, error)
}

// IdentifyConfig configures Identify.
type IdentifyConfig struct {
	Resolver CallerResolver
	Sessions *fibersession.Store
	// Tokens enables "Authorization: Bearer" tokens when set.
	Tokens TokenValidator
	// Unscoped marks every resolved caller as seeing all contacts.
	Unscoped bool
	Log      *zap.Logger
}

// Identify resolves the caller from a bearer token or the session cookie and
// stores it for CallerFrom. Invalid tokens, stale sessions and inactive users
// leave the request anonymous; the guards decide what that means.
func Identify(cfg IdentifyConfig) fiber.Handler {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		userID := identify(c, cfg, log)
		if userID == 0 {
			return c.Next()
		}

		caller, err := cfg.Resolver.Resolve(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, errs.ErrUnauthenticated) {
				return c.Next()
			}
			return err
		}
		caller.Unscoped = cfg.Unscoped
		c.Locals(callerKey, caller)
		return c.Next()
	}
}

func identify(c *fiber.Ctx, cfg IdentifyConfig, log *zap.Logger) uint {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" && cfg.Tokens != nil {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return 0
		}
		claims, err := cfg.Tokens.ValidateToken(parts[1])
		if err != nil {
			log.Debug("JWT validation failed", zap.Error(err))
			return 0
		}
		id, _ := services.UserIDFromClaims(claims)
		return id
	}

	if cfg.Sessions == nil {
		return 0
	}
	sess, err := cfg.Sessions.Get(c)
	if err != nil {
		log.Warn("failed to load session", zap.Error(err))
		return 0
	}
	return session.UserID(sess)
}

// CallerFrom returns the caller stored by Identify, or nil for anonymous
// requests.
func CallerFrom(c *fiber.Ctx) *models.Caller {
	caller, _ := c.Locals(callerKey).(*models.Caller)
	return caller
}
