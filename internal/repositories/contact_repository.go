package repositories

import (
	"context"

	"contactbook/internal/models"
)

// Scope restricts contact queries to one owner unless All is set. The zero
// value matches no rows.
type Scope struct {
	All     bool
	OwnerID uint
}

// ScopeFor returns the row visibility of caller.
func ScopeFor(caller *models.Caller) Scope {
	if caller.SeesAll() {
		return Scope{All: true}
	}
	if !caller.Authenticated() {
		return Scope{}
	}
	return Scope{OwnerID: caller.UserID}
}

// SearchMode selects the columns a keyword search matches against.
type SearchMode string

const (
	SearchName  SearchMode = "name"
	SearchEmail SearchMode = "email"
	SearchBoth  SearchMode = "both"
)

// ParseSearchMode maps raw input to a SearchMode, falling back to SearchName.
func ParseSearchMode(raw string) SearchMode {
	switch m := SearchMode(raw); m {
	case SearchName, SearchEmail, SearchBoth:
		return m
	default:
		return SearchName
	}
}

// ContactRepository defines the interface for contact data access. Every read
// is limited by a Scope; rows outside it behave as if they did not exist.
type ContactRepository interface {
	List(ctx context.Context, scope Scope) ([]models.Contact, error)
	Count(ctx context.Context, scope Scope) (int64, error)
	ListPage(ctx context.Context, scope Scope, offset, limit int) ([]models.Contact, error)
	GetByID(ctx context.Context, scope Scope, id uint) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, scope Scope, keyword string, mode SearchMode) ([]models.Contact, error)
}
