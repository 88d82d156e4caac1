package models

import "time"

// Role is the privilege level stored on a user's profile.
type Role string

const (
	RoleRegular Role = "regular"
	RoleAdmin   Role = "admin"
)

// Label is the human-readable role name used by the admin pages.
func (r Role) Label() string {
	if r == RoleAdmin {
		return "Administrator"
	}
	return "Regular user"
}

// UserProfile carries the role flag for exactly one user.
type UserProfile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Role      Role      `json:"user_type" gorm:"type:varchar(10);not null;default:regular"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the profile grants administrator rights.
func (p *UserProfile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
