package models

import "time"

// DefaultAdditional is stored when a contact is saved without a note.
const DefaultAdditional = "-"

// Contact is a single address-book entry owned by one user.
type Contact struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user" gorm:"index;not null"`
	User       *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Name       string    `json:"name" gorm:"type:varchar(100);not null"`
	Phone      string    `json:"phone" gorm:"type:varchar(20);not null"`
	Email      string    `json:"email" gorm:"type:varchar(254);not null"`
	Additional string    `json:"additional" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ContactInput holds the user-supplied fields of a new contact. The owner is
// never part of the input.
type ContactInput struct {
	Name       string `json:"name" form:"name" validate:"required,max=100"`
	Phone      string `json:"phone" form:"phone" validate:"required,max=20"`
	Email      string `json:"email" form:"email" validate:"required,max=254,contactemail"`
	Additional string `json:"additional" form:"additional"`
}

// ContactPatch carries a partial update; nil fields keep their stored value.
type ContactPatch struct {
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	Additional *string `json:"additional"`
}

// Empty reports whether the patch changes nothing.
func (p ContactPatch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.Email == nil && p.Additional == nil
}

// AllModels returns the models handled by AutoMigrate, parents first.
func AllModels() []any {
	return []any{&User{}, &UserProfile{}, &Contact{}}
}
