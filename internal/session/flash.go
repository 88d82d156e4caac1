package session

import "github.com/gofiber/fiber/v2/middleware/session"

// Flash levels.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashError   = "error"
)

// Flash is a message shown once on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

// SetFlash queues a message for the next page.
func SetFlash(sess *session.Session, level, message string) {
	sess.Set(keyFlashLevel, level)
	sess.Set(keyFlashMessage, message)
}

// PopFlash returns and clears the pending message, or nil.
func PopFlash(sess *session.Session) *Flash {
	msg, _ := sess.Get(keyFlashMessage).(string)
	if msg == "" {
		return nil
	}
	level, _ := sess.Get(keyFlashLevel).(string)
	sess.Delete(keyFlashLevel)
	sess.Delete(keyFlashMessage)
	return &Flash{Level: level, Message: msg}
}
