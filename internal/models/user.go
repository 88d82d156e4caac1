package models

import "time"

// User represents an account that owns contacts.
type User struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	Username  string       `json:"username" gorm:"uniqueIndex;type:varchar(150);not null"`
	Email     string       `json:"email" gorm:"type:varchar(254)"`
	Password  string       `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	IsActive  bool         `json:"is_active" gorm:"not null;default:true"`
	Profile   *UserProfile `json:"profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// RoleOf returns the role carried by the user's loaded profile, or RoleRegular
// when the profile was not loaded.
func (u *User) RoleOf() Role {
	if u == nil || u.Profile == nil {
		return RoleRegular
	}
	return u.Profile.Role
}
