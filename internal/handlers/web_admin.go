package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"contactbook/internal/errs"
	"contactbook/internal/middleware"
	"contactbook/internal/pagination"
	"contactbook/internal/session"
)

const userListPath = "/admin/users/"

// HandleUserList renders the paginated user list with roles.
func (h *WebHandler) HandleUserList(c *fiber.Ctx) error {
	page := pagination.ParsePage(c.Query("page"))
	users, p, err := h.users.ListUsers(c.UserContext(), middleware.CallerFrom(c), page, h.pageSize)
	if err != nil {
		return h.fail(c, err)
	}
	return h.render(c, "admin/users", fiber.Map{
		"Title": "Users",
		"Users": users,
		"Page":  p,
	})
}

// HandleUserPromoteForm asks for confirmation before promoting.
func (h *WebHandler) HandleUserPromoteForm(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	user, err := h.users.GetUser(c.UserContext(), middleware.CallerFrom(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return h.render(c, "admin/promote", fiber.Map{
		"Title": "Promote " + user.Username,
		"User":  user,
	})
}

// HandleUserPromote grants the admin role.
func (h *WebHandler) HandleUserPromote(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	user, err := h.users.Promote(c.UserContext(), middleware.CallerFrom(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return h.redirect(c, userListPath, session.FlashSuccess,
		"User "+user.Username+" has been promoted to administrator")
}

// HandleUserDemoteForm asks for confirmation before demoting. Admins are sent
// back to the list when they open their own demote page.
func (h *WebHandler) HandleUserDemoteForm(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	caller := middleware.CallerFrom(c)
	if id == caller.UserID {
		return h.redirect(c, userListPath, session.FlashError, "Cannot demote yourself")
	}
	user, err := h.users.GetUser(c.UserContext(), caller, id)
	if err != nil {
		return h.fail(c, err)
	}
	return h.render(c, "admin/demote", fiber.Map{
		"Title": "Demote " + user.Username,
		"User":  user,
	})
}

// HandleUserDemote revokes the admin role.
func (h *WebHandler) HandleUserDemote(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	user, err := h.users.Demote(c.UserContext(), middleware.CallerFrom(c), id)
	if err != nil {
		if errors.Is(err, errs.ErrSelfDemotion) {
			return h.redirect(c, userListPath, session.FlashError, "Cannot demote yourself")
		}
		return h.fail(c, err)
	}
	return h.redirect(c, userListPath, session.FlashSuccess,
		"User "+user.Username+" has been demoted to regular user")
}
