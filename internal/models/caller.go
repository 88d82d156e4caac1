package models

// Caller is the identity a request acts as. It is resolved once per request and
// passed explicitly into every service call.
type Caller struct {
	UserID   uint
	Username string
	Role     Role
	// Unscoped widens row visibility to every owner without granting admin
	// rights. Only the JSON API sets it, and only when owner scoping is disabled.
	Unscoped bool
}

// IsAdmin is the fail-closed admin predicate: nil or anonymous callers are
// never admins.
func (c *Caller) IsAdmin() bool {
	return c != nil && c.UserID != 0 && c.Role == RoleAdmin
}

// Authenticated reports whether the caller maps to a stored user.
func (c *Caller) Authenticated() bool {
	return c != nil && c.UserID != 0
}

// SeesAll reports whether the caller may observe contacts of every owner.
func (c *Caller) SeesAll() bool {
	return c.IsAdmin() || (c.Authenticated() && c.Unscoped)
}

// CallerFor builds a caller from a user and its profile.
func CallerFor(u *User, p *UserProfile) *Caller {
	role := RoleRegular
	if p != nil {
		role = p.Role
	}
	return &Caller{UserID: u.ID, Username: u.Username, Role: role}
}
