package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"contactbook/internal/errs"
	"contactbook/internal/models"
	"contactbook/internal/pagination"
	"contactbook/internal/repositories"
	"contactbook/internal/validation"
)

// Routing keys of the contact lifecycle events.
const (
	EventContactCreated = "contact.created"
	EventContactUpdated = "contact.updated"
	EventContactDeleted = "contact.deleted"
)

// EventPublisher delivers lifecycle events. *rabbitmq.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// ContactEvent is the payload published after a contact changes.
type ContactEvent struct {
	ContactID uint      `json:"contact_id"`
	OwnerID   uint      `json:"owner_id"`
	ActorID   uint      `json:"actor_id"`
	Action    string    `json:"action"`
	At        time.Time `json:"at"`
}

// ContactService implements contact CRUD and search with owner scoping: admins
// see every contact, everybody else only their own.
type ContactService struct {
	repo     repositories.ContactRepository
	validate *validator.Validate
	events   EventPublisher
	log      *zap.Logger
}

// NewContactService creates a new ContactService. events may be nil.
func NewContactService(repo repositories.ContactRepository, events EventPublisher, log *zap.Logger) *ContactService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactService{
		repo:     repo,
		validate: validation.New(),
		events:   events,
		log:      log,
	}
}

// List returns every contact visible to caller in insertion order.
func (s *ContactService) List(ctx context.Context, caller *models.Caller) ([]models.Contact, error) {
	if !caller.Authenticated() {
		return nil, errs.ErrUnauthenticated
	}
	return s.repo.List(ctx, repositories.ScopeFor(caller))
}

// ListPage returns the requested page of contacts visible to caller. The page
// number is clamped, so this never fails with an out-of-range error.
func (s *ContactService) ListPage(ctx context.Context, caller *models.Caller, page, size int) ([]models.Contact, pagination.Page, error) {
	if !caller.Authenticated() {
		return nil, pagination.Page{}, errs.ErrUnauthenticated
	}
	scope := repositories.ScopeFor(caller)
	total, err := s.repo.Count(ctx, scope)
	if err != nil {
		return nil, pagination.Page{}, err
	}
	p := pagination.New(total, page, size)
	contacts, err := s.repo.ListPage(ctx, scope, p.Offset(), p.Size)
	if err != nil {
		return nil, pagination.Page{}, err
	}
	return contacts, p, nil
}

// Get returns one contact. A contact the caller may not see is reported
// exactly like a missing one.
func (s *ContactService) Get(ctx context.Context, caller *models.Caller, id uint) (*models.Contact, error) {
	if !caller.Authenticated() {
		return nil, errs.ErrUnauthenticated
	}
	return s.repo.GetByID(ctx, repositories.ScopeFor(caller), id)
}

// Create stores a new contact owned by caller.
func (s *ContactService) Create(ctx context.Context, caller *models.Caller, in models.ContactInput) (*models.Contact, error) {
	if !caller.Authenticated() {
		return nil, errs.ErrUnauthenticated
	}
	in = normalize(in)
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	contact := &models.Contact{
		UserID:     caller.UserID,
		Name:       in.Name,
		Phone:      in.Phone,
		Email:      in.Email,
		Additional: in.Additional,
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}
	s.publish(ctx, EventContactCreated, caller, contact)
	return contact, nil
}

// Update applies the supplied fields of patch to a staged copy of the contact
// and stores it only when the result is valid. A failed validation leaves the
// stored contact untouched.
func (s *ContactService) Update(ctx context.Context, caller *models.Caller, id uint, patch models.ContactPatch) (*models.Contact, error) {
	current, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	staged := *current
	if patch.Name != nil {
		staged.Name = *patch.Name
	}
	if patch.Phone != nil {
		staged.Phone = *patch.Phone
	}
	if patch.Email != nil {
		staged.Email = *patch.Email
	}
	if patch.Additional != nil {
		staged.Additional = *patch.Additional
	}

	in := normalize(models.ContactInput{
		Name:       staged.Name,
		Phone:      staged.Phone,
		Email:      staged.Email,
		Additional: staged.Additional,
	})
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	staged.Name, staged.Phone, staged.Email, staged.Additional = in.Name, in.Phone, in.Email, in.Additional

	if err := s.repo.Update(ctx, &staged); err != nil {
		return nil, err
	}
	s.publish(ctx, EventContactUpdated, caller, &staged)
	return &staged, nil
}

// Delete removes a contact and returns it as it was before deletion.
func (s *ContactService) Delete(ctx context.Context, caller *models.Caller, id uint) (*models.Contact, error) {
	contact, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, contact.ID); err != nil {
		return nil, err
	}
	s.publish(ctx, EventContactDeleted, caller, contact)
	return contact, nil
}

// Search returns the visible contacts whose name and/or email contain keyword,
// ignoring case. Unknown modes search by name.
func (s *ContactService) Search(ctx context.Context, caller *models.Caller, keyword, mode string) ([]models.Contact, error) {
	if !caller.Authenticated() {
		return nil, errs.ErrUnauthenticated
	}
	return s.repo.Search(ctx, repositories.ScopeFor(caller), keyword, repositories.ParseSearchMode(mode))
}

func (s *ContactService) publish(ctx context.Context, key string, caller *models.Caller, c *models.Contact) {
	if s.events == nil {
		return
	}
	ev := ContactEvent{
		ContactID: c.ID,
		OwnerID:   c.UserID,
		ActorID:   caller.UserID,
		Action:    key,
		At:        time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, key, ev); err != nil {
		s.log.Warn("failed to publish contact event",
			zap.String("event", key),
			zap.Uint("contact_id", c.ID),
			zap.Error(err),
		)
	}
}

// normalize trims the input, lowercases the email and fills the default note.
func normalize(in models.ContactInput) models.ContactInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Additional = strings.TrimSpace(in.Additional)
	if in.Additional == "" {
		in.Additional = models.DefaultAdditional
	}
	return in
}
