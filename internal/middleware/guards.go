package middleware

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"contactbook/internal/errs"
)

// Guard inspects a request and returns nil to let it through, or
// errs.ErrUnauthenticated / errs.ErrForbidden to deny it. Guards have no side
// effects.
type Guard func(c *fiber.Ctx) error

// DenyFunc writes the response for a denied request.
type DenyFunc func(c *fiber.Ctx, err error) error

// Authenticated requires a resolved caller.
func Authenticated() Guard {
	return func(c *fiber.Ctx) error {
		if !CallerFrom(c).Authenticated() {
			return errs.ErrUnauthenticated
		}
		return nil
	}
}

// Admin requires a caller with the admin role.
func Admin() Guard {
	return func(c *fiber.Ctx) error {
		if !CallerFrom(c).IsAdmin() {
			return errs.ErrForbidden
		}
		return nil
	}
}

// Protect runs guards in order and hands the first failure to deny.
func Protect(deny DenyFunc, guards ...Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, g := range guards {
			if err := g(c); err != nil {
				return deny(c, err)
			}
		}
		return c.Next()
	}
}

// JSONDeny answers with a 401 or 403 message envelope.
func JSONDeny(c *fiber.Ctx, err error) error {
	if errors.Is(err, errs.ErrUnauthenticated) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication credentials were not provided.",
		})
	}
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"message": "You do not have permission to perform this action.",
	})
}

// HTMLDeny redirects anonymous visitors to loginPath, remembering where they
// were going, and renders the 403 page for everybody else.
func HTMLDeny(loginPath string) DenyFunc {
	return func(c *fiber.Ctx, err error) error {
		if errors.Is(err, errs.ErrUnauthenticated) {
			target := loginPath + "?next=" + url.QueryEscape(c.OriginalURL())
			return c.Redirect(target, fiber.StatusSeeOther)
		}
		return c.Status(fiber.StatusForbidden).Render("error", fiber.Map{
			"Title":   "Forbidden",
			"Status":  fiber.StatusForbidden,
			"Message": "You do not have permission to view this page.",
			"Caller":  CallerFrom(c),
		}, "layouts/main")
	}
}
