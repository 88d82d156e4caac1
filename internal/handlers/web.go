package handlers

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"contactbook/internal/errs"
	"contactbook/internal/middleware"
	"contactbook/internal/services"
	"contactbook/internal/session"
)

const (
	layout    = "layouts/main"
	loginPath = "/login"
)

// WebHandler serves the server-rendered HTML interface.
type WebHandler struct {
	auth     *services.AuthService
	contacts *services.ContactService
	users    *services.UserService
	sessions *fibersession.Store
	pageSize int
	log      *zap.Logger
}

// WebDeps groups the collaborators of WebHandler.
type WebDeps struct {
	Auth     *services.AuthService
	Contacts *services.ContactService
	Users    *services.UserService
	Sessions *fibersession.Store
	PageSize int
	Log      *zap.Logger
}

// NewWebHandler creates a new WebHandler.
func NewWebHandler(deps WebDeps) *WebHandler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &WebHandler{
		auth:     deps.Auth,
		contacts: deps.Contacts,
		users:    deps.Users,
		sessions: deps.Sessions,
		pageSize: deps.PageSize,
		log:      deps.Log,
	}
}

// RegisterRoutes registers the HTML routes. router is expected to be behind
// Identify; loginLimit throttles login attempts.
func (h *WebHandler) RegisterRoutes(router fiber.Router, loginLimit fiber.Handler) {
	deny := middleware.HTMLDeny(loginPath)
	loggedIn := middleware.Protect(deny, middleware.Authenticated())
	adminOnly := middleware.Protect(deny, middleware.Authenticated(), middleware.Admin())

	router.Get("/", h.HandleIndex)
	router.Get("/register", h.HandleRegisterForm)
	router.Post("/register", h.HandleRegister)
	router.Get(loginPath, h.HandleLoginForm)
	router.Post(loginPath, loginLimit, h.HandleLogin)
	router.Post("/logout", h.HandleLogout)

	contacts := router.Group("/contacts", loggedIn)
	contacts.Get("/", h.HandleContactList)
	contacts.Get("/create/", h.HandleContactCreateForm)
	contacts.Post("/create/", h.HandleContactCreate)
	contacts.Get("/:id/", h.HandleContactDetail)
	contacts.Get("/:id/edit/", h.HandleContactEditForm)
	contacts.Post("/:id/edit/", h.HandleContactEdit)
	contacts.Get("/:id/delete/", h.HandleContactDeleteForm)
	contacts.Post("/:id/delete/", h.HandleContactDelete)

	search := router.Group("/search", loggedIn)
	search.Get("/", h.HandleSearchForm)
	search.Get("/results/", h.HandleSearchResults)

	admin := router.Group("/admin/users", adminOnly)
	admin.Get("/", h.HandleUserList)
	admin.Get("/:id/promote/", h.HandleUserPromoteForm)
	admin.Post("/:id/promote/", h.HandleUserPromote)
	admin.Get("/:id/demote/", h.HandleUserDemoteForm)
	admin.Post("/:id/demote/", h.HandleUserDemote)
}

// HandleIndex renders the home page.
func (h *WebHandler) HandleIndex(c *fiber.Ctx) error {
	return h.render(c, "index", fiber.Map{"Title": "Contact Book"})
}

// render adds the caller and the pending flash message to data.
func (h *WebHandler) render(c *fiber.Ctx, name string, data fiber.Map) error {
	data["Caller"] = middleware.CallerFrom(c)
	sess, err := h.sessions.Get(c)
	if err != nil {
		h.log.Warn("failed to load session", zap.Error(err))
	} else if flash := session.PopFlash(sess); flash != nil {
		data["Flash"] = flash
		if err := sess.Save(); err != nil {
			return err
		}
	}
	return c.Render(name, data, layout)
}

// redirect queues a flash message and answers 303 See Other.
func (h *WebHandler) redirect(c *fiber.Ctx, to, level, message string) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	session.SetFlash(sess, level, message)
	if err := sess.Save(); err != nil {
		return err
	}
	return c.Redirect(to, fiber.StatusSeeOther)
}

func (h *WebHandler) renderError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).Render("error", fiber.Map{
		"Title":   strconv.Itoa(status),
		"Status":  status,
		"Message": message,
		"Caller":  middleware.CallerFrom(c),
	}, layout)
}

// fail maps service errors onto the error page.
func (h *WebHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return h.renderError(c, fiber.StatusNotFound, "The page you requested does not exist.")
	case errors.Is(err, errs.ErrUnauthenticated), errors.Is(err, errs.ErrForbidden):
		return middleware.HTMLDeny(loginPath)(c, err)
	}
	h.log.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return h.renderError(c, fiber.StatusInternalServerError, "Something went wrong. Please try again later.")
}

// pathID parses a positive numeric :id parameter.
func pathID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.ErrNotFound
	}
	return uint(id), nil
}

// formField returns a submitted form value and whether the field was present
// at all, so an explicitly emptied field differs from an omitted one.
func formField(c *fiber.Ctx, key string) (string, bool) {
	if args := c.Request().PostArgs(); args.Has(key) {
		return string(args.Peek(key)), true
	}
	if form, err := c.MultipartForm(); err == nil {
		if v, ok := form.Value[key]; ok && len(v) > 0 {
			return v[0], true
		}
	}
	return "", false
}

// safeNext only allows local absolute paths as post-login targets. Values with
// control characters never reach the Location header.
func safeNext(next string) string {
	const fallback = "/"
	for i := 0; i < len(next); i++ {
		if b := next[i]; b < 0x20 || b == 0x7f {
			return fallback
		}
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil ||
		!strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return fallback
	}
	return next
}
