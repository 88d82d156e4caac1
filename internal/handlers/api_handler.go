package handlers

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"contactbook/internal/errs"
	"contactbook/internal/middleware"
	"contactbook/internal/models"
	"contactbook/internal/pagination"
	"contactbook/internal/services"
)

// ContactAPIHandler serves the JSON contact API.
type ContactAPIHandler struct {
	service  *services.ContactService
	pageSize int
	log      *zap.Logger
}

// NewContactAPIHandler creates a new ContactAPIHandler.
func NewContactAPIHandler(service *services.ContactService, pageSize int, log *zap.Logger) *ContactAPIHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactAPIHandler{
		service:  service,
		pageSize: pageSize,
		log:      log,
	}
}

// RegisterRoutes registers the contact API routes. router is expected to be
// behind Identify and an Authenticated guard.
func (h *ContactAPIHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/list", h.HandleList)
	router.Get("/list-page/:page", h.HandleListPage)
	router.Get("/get/:id", h.HandleGet)
	router.Post("/get-detail", h.HandleGetDetail)
	router.Put("/new", h.HandleCreate)
	router.Patch("/update/:id", h.HandleUpdate)
	router.Delete("/delete/:id", h.HandleDelete)
	router.Get("/search/:segment", h.HandleSearch)
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not Found"})
}

// contactID parses a positive numeric id route parameter.
func contactID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// HandleList returns every visible contact.
func (h *ContactAPIHandler) HandleList(c *fiber.Ctx) error {
	contacts, err := h.service.List(c.UserContext(), middleware.CallerFrom(c))
	if err != nil {
		return jsonError(c, h.log, err)
	}
	if len(contacts) == 0 {
		return notFound(c)
	}
	return c.JSON(fiber.Map{"result": contacts})
}

// HandleListPage returns one page of contacts. Out-of-range and non-numeric
// pages are clamped instead of rejected.
func (h *ContactAPIHandler) HandleListPage(c *fiber.Ctx) error {
	page := pagination.ParsePage(c.Params("page"))
	contacts, p, err := h.service.ListPage(c.UserContext(), middleware.CallerFrom(c), page, h.pageSize)
	if err != nil {
		return jsonError(c, h.log, err)
	}
	return c.JSON(pagination.NewEnvelope(p, contacts))
}

// HandleGet returns a single contact by id.
func (h *ContactAPIHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := contactID(c)
	if !ok {
		return notFound(c)
	}
	contact, err := h.service.Get(c.UserContext(), middleware.CallerFrom(c), id)
	if err != nil {
		return jsonError(c, h.log, err)
	}
	return c.JSON(contact)
}

type detailRequest struct {
	ID json.RawMessage `json:"id"`
}

// parseDetailID accepts the id as a JSON integer or a numeric string.
func parseDetailID(raw json.RawMessage) (uint, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// HandleGetDetail returns the contact whose id is given in the request body.
func (h *ContactAPIHandler) HandleGetDetail(c *fiber.Ctx) error {
	var req detailRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}
	id, ok := parseDetailID(req.ID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	contact, err := h.service.Get(c.UserContext(), middleware.CallerFrom(c), id)
	if errors.Is(err, errs.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"id": id, "message": "Not Found"})
	}
	if err != nil {
		return jsonError(c, h.log, err)
	}
	return c.JSON(contact)
}

// HandleCreate creates a contact owned by the caller. Any owner in the body is
// ignored.
func (h *ContactAPIHandler) HandleCreate(c *fiber.Ctx) error {
	var in models.ContactInput
	if err := decodeJSON(c, &in); err != nil {
		return jsonError(c, h.log, err)
	}
	contact, err := h.service.Create(c.UserContext(), middleware.CallerFrom(c), in)
	if err != nil {
		return jsonError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "done",
		"id":      contact.ID,
	})
}

// HandleUpdate applies a partial update.
func (h *ContactAPIHandler) HandleUpdate(c *fiber.Ctx) error {
	id, ok := contactID(c)
	if !ok {
		return notFound(c)
	}
	var patch models.ContactPatch
	if err := decodeJSON(c, &patch); err != nil {
		return jsonError(c, h.log, err)
	}

	_, err := h.service.Update(c.UserContext(), middleware.CallerFrom(c), id, patch)
	if errors.Is(err, errs.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"id": id, "message": "Not Found"})
	}
	if err != nil {
		return jsonError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"id": id, "message": "Updated"})
}

// HandleDelete deletes a contact.
func (h *ContactAPIHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := contactID(c)
	if !ok {
		return notFound(c)
	}
	if _, err := h.service.Delete(c.UserContext(), middleware.CallerFrom(c), id); err != nil {
		return jsonError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "done"})
}

// HandleSearch matches the path segment against contact names, or against the
// columns chosen by ?mode=.
func (h *ContactAPIHandler) HandleSearch(c *fiber.Ctx) error {
	segment, err := url.PathUnescape(c.Params("segment"))
	if err != nil {
		segment = c.Params("segment")
	}
	contacts, err := h.service.Search(c.UserContext(), middleware.CallerFrom(c), segment, c.Query("mode"))
	if err != nil {
		return jsonError(c, h.log, err)
	}
	if len(contacts) == 0 {
		return notFound(c)
	}
	return c.JSON(fiber.Map{"results": contacts})
}
