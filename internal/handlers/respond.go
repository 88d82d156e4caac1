package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"contactbook/internal/errs"
	"contactbook/internal/middleware"
)

var errInvalidJSON = errors.New("invalid JSON")

// decodeJSON reads the raw body regardless of Content-Type. Syntax errors
// yield errInvalidJSON; a value of the wrong type becomes a field error.
func decodeJSON(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(body) == 0 {
		return errInvalidJSON
	}
	err := json.Unmarshal(body, v)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return errs.NewValidationError(map[string]string{
			typeErr.Field: "Not a valid " + typeErr.Type.String() + ".",
		})
	}
	return errInvalidJSON
}

// jsonError maps service errors onto the JSON message envelope.
func jsonError(c *fiber.Ctx, log *zap.Logger, err error) error {
	if verr, ok := errs.AsValidation(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  verr.Fields,
		})
	}
	switch {
	case errors.Is(err, errInvalidJSON):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid JSON"})
	case errors.Is(err, errs.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not Found"})
	case errors.Is(err, errs.ErrUnauthenticated), errors.Is(err, errs.ErrForbidden):
		return middleware.JSONDeny(c, err)
	case errors.Is(err, errs.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	}
	log.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}
