package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"contactbook/internal/errs"
	"contactbook/internal/services"
	"contactbook/internal/validation"
)

// AuthHandler handles the JSON registration and token endpoints.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		authService: authService,
		validate:    validation.New(),
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
// limit guards the token endpoint against password guessing.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, limit fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/token", limit, h.HandleToken)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := decodeJSON(c, &in); err != nil {
		return jsonError(c, h.log, err)
	}

	user, err := h.authService.RegisterUser(c.UserContext(), in)
	if err != nil {
		if _, ok := errs.AsValidation(err); ok {
			return jsonError(c, h.log, err)
		}
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Username already exists"})
		case errors.Is(err, services.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email already exists"})
		}
		h.log.Error("registration failed", zap.String("username", in.Username), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Registration failed",
		})
	}

	// Password is tagged json:"-"
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for a token.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// HandleToken checks credentials and issues a JWT token.
func (h *AuthHandler) HandleToken(c *fiber.Ctx) error {
	var req LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return jsonError(c, h.log, err)
	}
	if err := validation.Struct(h.validate, req); err != nil {
		return jsonError(c, h.log, err)
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			h.log.Info("token request rejected", zap.String("username", req.Username))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid username or password",
			})
		}
		return jsonError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}
