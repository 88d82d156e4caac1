package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"contactbook/internal/errs"
	"contactbook/internal/middleware"
	"contactbook/internal/models"
	"contactbook/internal/pagination"
	"contactbook/internal/repositories"
	"contactbook/internal/session"
)

func contactURL(id uint) string {
	return fmt.Sprintf("/contacts/%d/", id)
}

// HandleContactList renders one page of the caller's contacts.
func (h *WebHandler) HandleContactList(c *fiber.Ctx) error {
	caller := middleware.CallerFrom(c)
	page := pagination.ParsePage(c.Query("page"))
	contacts, p, err := h.contacts.ListPage(c.UserContext(), caller, page, h.pageSize)
	if err != nil {
		return h.fail(c, err)
	}
	return h.render(c, "contacts/list", fiber.Map{
		"Title":    "Contacts",
		"Contacts": contacts,
		"Page":     p,
		"IsAdmin":  caller.IsAdmin(),
	})
}

// HandleContactDetail renders a single contact.
func (h *WebHandler) HandleContactDetail(c *fiber.Ctx) error {
	contact, err := h.loadContact(c)
	if err != nil {
		return h.fail(c, err)
	}
	return h.render(c, "contacts/detail", fiber.Map{
		"Title":   contact.Name,
		"Contact": contact,
	})
}

func (h *WebHandler) loadContact(c *fiber.Ctx) (*models.Contact, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}
	return h.contacts.Get(c.UserContext(), middleware.CallerFrom(c), id)
}

// HandleContactCreateForm renders an empty contact form.
func (h *WebHandler) HandleContactCreateForm(c *fiber.Ctx) error {
	return h.render(c, "contacts/create", fiber.Map{
		"Title":  "New contact",
		"Values": models.ContactInput{},
	})
}

// HandleContactCreate stores a new contact and shows it.
func (h *WebHandler) HandleContactCreate(c *fiber.Ctx) error {
	var in models.ContactInput
	if err := c.BodyParser(&in); err != nil {
		return h.renderError(c, fiber.StatusBadRequest, "Invalid form submission.")
	}

	contact, err := h.contacts.Create(c.UserContext(), middleware.CallerFrom(c), in)
	if err != nil {
		if verr, ok := errs.AsValidation(err); ok {
			return h.render(c, "contacts/create", fiber.Map{
				"Title":  "New contact",
				"Values": in,
				"Error":  "Please fill in all required fields",
				"Errors": verr.Fields,
			})
		}
		return h.fail(c, err)
	}
	return h.redirect(c, contactURL(contact.ID), session.FlashSuccess, "Contact created successfully: "+contact.Name)
}

// HandleContactEditForm renders the edit form filled with the stored values.
func (h *WebHandler) HandleContactEditForm(c *fiber.Ctx) error {
	contact, err := h.loadContact(c)
	if err != nil {
		return h.fail(c, err)
	}
	return h.render(c, "contacts/edit", fiber.Map{
		"Title":   "Edit " + contact.Name,
		"Contact": contact,
		"Values":  inputOf(contact),
	})
}

// HandleContactEdit applies the submitted fields. Fields missing from the
// form keep their stored values.
func (h *WebHandler) HandleContactEdit(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var patch models.ContactPatch
	for key, dst := range map[string]**string{
		"name":       &patch.Name,
		"phone":      &patch.Phone,
		"email":      &patch.Email,
		"additional": &patch.Additional,
	} {
		if v, ok := formField(c, key); ok {
			*dst = &v
		}
	}

	caller := middleware.CallerFrom(c)
	updated, err := h.contacts.Update(c.UserContext(), caller, id, patch)
	if err != nil {
		verr, ok := errs.AsValidation(err)
		if !ok {
			return h.fail(c, err)
		}
		contact, err := h.contacts.Get(c.UserContext(), caller, id)
		if err != nil {
			return h.fail(c, err)
		}
		return h.render(c, "contacts/edit", fiber.Map{
			"Title":   "Edit " + contact.Name,
			"Contact": contact,
			"Values":  patched(inputOf(contact), patch),
			"Error":   "Please fill in all required fields",
			"Errors":  verr.Fields,
		})
	}
	return h.redirect(c, contactURL(updated.ID), session.FlashSuccess, "Contact updated successfully: "+updated.Name)
}

func inputOf(contact *models.Contact) models.ContactInput {
	return models.ContactInput{
		Name:       contact.Name,
		Phone:      contact.Phone,
		Email:      contact.Email,
		Additional: contact.Additional,
	}
}

// patched overlays the submitted values so a failed edit shows what was typed.
func patched(in models.ContactInput, p models.ContactPatch) models.ContactInput {
	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.Phone != nil {
		in.Phone = *p.Phone
	}
	if p.Email != nil {
		in.Email = *p.Email
	}
	if p.Additional != nil {
		in.Additional = *p.Additional
	}
	return in
}

// HandleContactDeleteForm asks for confirmation.
func (h *WebHandler) HandleContactDeleteForm(c *fiber.Ctx) error {
	contact, err := h.loadContact(c)
	if err != nil {
		return h.fail(c, err)
	}
	return h.render(c, "contacts/delete", fiber.Map{
		"Title":   "Delete " + contact.Name,
		"Contact": contact,
	})
}

// HandleContactDelete removes the contact.
func (h *WebHandler) HandleContactDelete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	deleted, err := h.contacts.Delete(c.UserContext(), middleware.CallerFrom(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return h.redirect(c, "/contacts/", session.FlashSuccess, "Contact deleted successfully: "+deleted.Name)
}

// HandleSearchForm renders the search form.
func (h *WebHandler) HandleSearchForm(c *fiber.Ctx) error {
	return h.render(c, "search/form", fiber.Map{
		"Title":      "Search contacts",
		"SearchType": string(repositories.SearchName),
	})
}

// HandleSearchResults runs a search. An empty keyword sends the visitor back
// to the form.
func (h *WebHandler) HandleSearchResults(c *fiber.Ctx) error {
	keyword := strings.TrimSpace(c.Query("keyword"))
	searchType := c.Query("search_type", string(repositories.SearchName))
	if keyword == "" {
		return h.redirect(c, "/search/", session.FlashWarning, "Please enter a search keyword")
	}

	contacts, err := h.contacts.Search(c.UserContext(), middleware.CallerFrom(c), keyword, searchType)
	if err != nil {
		return h.fail(c, err)
	}
	return h.render(c, "search/results", fiber.Map{
		"Title":      "Search results",
		"Contacts":   contacts,
		"Keyword":    keyword,
		"SearchType": string(repositories.ParseSearchMode(searchType)),
	})
}
