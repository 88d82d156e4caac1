// Package session configures cookie sessions for the HTML interface and keeps
// the per-session helpers for login state and one-shot flash messages.
//
// fiber releases a session on Save, so helpers only mutate it and the handler
// saves once at the end.
package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	keyUserID       = "user_id"
	keyFlashLevel   = "flash_level"
	keyFlashMessage = "flash_message"
)

// Config holds the cookie settings of the session store.
type Config struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// NewStore returns a session store. storage may be nil for in-memory sessions.
func NewStore(cfg Config, storage fiber.Storage) *session.Store {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return session.New(session.Config{
		Storage:        storage,
		Expiration:     cfg.TTL,
		KeyLookup:      "cookie:" + cfg.CookieName,
		CookieSecure:   cfg.Secure,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Login binds userID to a fresh session id. The caller saves the session.
func Login(sess *session.Session, userID uint) error {
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(keyUserID, userID)
	return nil
}

// Logout drops the user from the session and moves the remaining data to a
// fresh session id. The caller saves the session.
func Logout(sess *session.Session) error {
	sess.Delete(keyUserID)
	return sess.Regenerate()
}

// UserID returns the logged-in user id, or 0.
func UserID(sess *session.Session) uint {
	id, _ := sess.Get(keyUserID).(uint)
	return id
}
