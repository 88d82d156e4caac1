package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"contactbook/internal/errs"
	"contactbook/internal/models"
)

// likeEscaper escapes LIKE wildcards with '!' which every supported dialect
// accepts as an ESCAPE character.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// GORMContactRepository is a GORM implementation of ContactRepository.
type GORMContactRepository struct {
	db *gorm.DB
}

// NewGORMContactRepository creates a new instance of GORMContactRepository.
func NewGORMContactRepository(db *gorm.DB) *GORMContactRepository {
	return &GORMContactRepository{
		db: db,
	}
}

func (r *GORMContactRepository) scoped(ctx context.Context, scope Scope) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Contact{})
	if !scope.All {
		q = q.Where("user_id = ?", scope.OwnerID)
	}
	return q
}

// List retrieves every contact visible in scope in insertion order.
func (r *GORMContactRepository) List(ctx context.Context, scope Scope) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := r.scoped(ctx, scope).Order("id ASC").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// Count returns the number of contacts visible in scope.
func (r *GORMContactRepository) Count(ctx context.Context, scope Scope) (int64, error) {
	var n int64
	if err := r.scoped(ctx, scope).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return n, nil
}

// ListPage retrieves one window of the contacts visible in scope.
func (r *GORMContactRepository) ListPage(ctx context.Context, scope Scope, offset, limit int) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.scoped(ctx, scope).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts page: %w", err)
	}
	return contacts, nil
}

// GetByID retrieves a single contact visible in scope. Missing rows and rows
// of other owners both yield errs.ErrNotFound.
func (r *GORMContactRepository) GetByID(ctx context.Context, scope Scope, id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := r.scoped(ctx, scope).First(&contact, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contact with ID %d: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contact by ID %d: %w", id, err)
	}
	return &contact, nil
}

// Create creates a new contact in the database.
func (r *GORMContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(contact).Error; err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// Update writes the editable fields of an existing contact. The owner column
// is never written.
func (r *GORMContactRepository) Update(ctx context.Context, contact *models.Contact) error {
	res := r.db.WithContext(ctx).
		Model(contact).
		Select("name", "phone", "email", "additional", "updated_at").
		Updates(contact)
	if res.Error != nil {
		return fmt.Errorf("failed to update contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact with ID %d for update: %w", contact.ID, errs.ErrNotFound)
	}
	return nil
}

// Delete deletes a contact by its ID from the database.
func (r *GORMContactRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Contact{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact with ID %d for deletion: %w", id, errs.ErrNotFound)
	}
	return nil
}

// Search retrieves contacts in scope whose name and/or email contain keyword,
// ignoring case. The column and the keyword are folded by the same LOWER.
func (r *GORMContactRepository) Search(ctx context.Context, scope Scope, keyword string, mode SearchMode) ([]models.Contact, error) {
	pattern := "%" + likeEscaper.Replace(keyword) + "%"
	q := r.scoped(ctx, scope)
	switch mode {
	case SearchEmail:
		q = q.Where("LOWER(email) LIKE LOWER(?) ESCAPE '!'", pattern)
	case SearchBoth:
		q = q.Where("(LOWER(name) LIKE LOWER(?) ESCAPE '!' OR LOWER(email) LIKE LOWER(?) ESCAPE '!')", pattern, pattern)
	default:
		q = q.Where("LOWER(name) LIKE LOWER(?) ESCAPE '!'", pattern)
	}

	var contacts []models.Contact
	if err := q.Order("id ASC").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}
	return contacts, nil
}
