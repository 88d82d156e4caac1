package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"contactbook/internal/errs"
	"contactbook/internal/services"
	"contactbook/internal/session"
)

// HandleRegisterForm renders the registration form.
func (h *WebHandler) HandleRegisterForm(c *fiber.Ctx) error {
	return h.render(c, "auth/register", fiber.Map{
		"Title":  "Register",
		"Values": services.RegisterInput{},
	})
}

// HandleRegister creates an account and sends the visitor to the login page.
func (h *WebHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return h.renderError(c, fiber.StatusBadRequest, "Invalid form submission.")
	}

	rerender := func(message string, fields map[string]string) error {
		in.Password, in.PasswordConfirm = "", ""
		return h.render(c, "auth/register", fiber.Map{
			"Title":  "Register",
			"Values": in,
			"Error":  message,
			"Errors": fields,
		})
	}

	if in.Password != in.PasswordConfirm {
		return rerender("Passwords do not match", map[string]string{"password_confirm": "Passwords do not match"})
	}

	_, err := h.auth.RegisterUser(c.UserContext(), in)
	if err != nil {
		if verr, ok := errs.AsValidation(err); ok {
			return rerender("Please correct the errors below.", verr.Fields)
		}
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			return rerender("Username already exists", map[string]string{"username": "Username already exists"})
		case errors.Is(err, services.ErrEmailTaken):
			return rerender("Email already exists", map[string]string{"email": "Email already exists"})
		}
		h.log.Error("registration failed", zap.String("username", in.Username), zap.Error(err))
		return rerender("Registration failed", nil)
	}
	return h.redirect(c, loginPath, session.FlashSuccess, "Registration successful, please log in")
}

// HandleLoginForm renders the login form.
func (h *WebHandler) HandleLoginForm(c *fiber.Ctx) error {
	return h.render(c, "auth/login", fiber.Map{
		"Title": "Log in",
		"Next":  safeNext(c.Query("next")),
	})
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

// HandleLogin starts a session and redirects to the page that asked for it.
func (h *WebHandler) HandleLogin(c *fiber.Ctx) error {
	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderError(c, fiber.StatusBadRequest, "Invalid form submission.")
	}
	if form.Next == "" {
		form.Next = c.Query("next")
	}
	next := safeNext(form.Next)

	user, err := h.auth.Authenticate(c.UserContext(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			h.log.Info("login rejected", zap.String("username", form.Username), zap.String("ip", c.IP()))
			return h.render(c, "auth/login", fiber.Map{
				"Title":    "Log in",
				"Next":     next,
				"Username": form.Username,
				"Error":    "Invalid username or password",
			})
		}
		return h.fail(c, err)
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := session.Login(sess, user.ID); err != nil {
		return h.fail(c, err)
	}
	session.SetFlash(sess, session.FlashSuccess, "Welcome back, "+user.Username+"!")
	if err := sess.Save(); err != nil {
		return h.fail(c, err)
	}
	return c.Redirect(next, fiber.StatusSeeOther)
}

// HandleLogout ends the session.
func (h *WebHandler) HandleLogout(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := session.Logout(sess); err != nil {
		return h.fail(c, err)
	}
	session.SetFlash(sess, session.FlashSuccess, "You have successfully logged out")
	if err := sess.Save(); err != nil {
		return h.fail(c, err)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// RateLimited answers requests rejected by the login limiter.
func RateLimited(c *fiber.Ctx) error {
	if c.Path() == loginPath {
		return c.Status(fiber.StatusTooManyRequests).Render("error", fiber.Map{
			"Title":   "Too many attempts",
			"Status":  fiber.StatusTooManyRequests,
			"Message": "Too many login attempts. Please wait a minute and try again.",
		}, layout)
	}
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"message": "Too many requests",
	})
}
