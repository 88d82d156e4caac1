// Package app wires repositories, services and handlers into a Fiber app.
package app

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"contactbook/internal/config"
	"contactbook/internal/handlers"
	"contactbook/internal/middleware"
	"contactbook/internal/repositories"
	"contactbook/internal/services"
	"contactbook/internal/session"
	"contactbook/internal/views"
)

// Deps are the resources New builds the application from.
type Deps struct {
	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	// Redis is optional; sessions and login counters stay in memory without it.
	Redis *redis.Client
	// Events is optional; contact events are dropped without it.
	Events services.EventPublisher
}

// New builds the Fiber application with every route registered.
func New(d Deps) *fiber.App {
	cfg := d.Config
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(d.DB)
	profileRepo := repositories.NewGORMProfileRepository(d.DB)
	contactRepo := repositories.NewGORMContactRepository(d.DB)

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, profileRepo, services.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.JWTTTL,
		BcryptCost: cfg.BcryptCost,
	})
	userService := services.NewUserService(userRepo, profileRepo)
	contactService := services.NewContactService(contactRepo, d.Events, log)

	// --- Sessions and rate limits ---
	var sessionStorage, limiterStorage fiber.Storage
	if d.Redis != nil {
		sessionStorage = session.NewRedisStorage(d.Redis, "contactbook:session:")
		limiterStorage = session.NewRedisStorage(d.Redis, "contactbook:limiter:")
	}
	store := session.NewStore(session.Config{
		CookieName: cfg.SessionCookie,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.CookieSecure,
	}, sessionStorage)
	loginLimit := middleware.LoginLimiter(cfg.LoginRateLimit, limiterStorage, handlers.RateLimited)

	// --- Initialize Handlers ---
	webHandler := handlers.NewWebHandler(handlers.WebDeps{
		Auth:     authService,
		Contacts: contactService,
		Users:    userService,
		Sessions: store,
		PageSize: cfg.PageSize,
		Log:      log,
	})
	apiHandler := handlers.NewContactAPIHandler(contactService, cfg.PageSize, log)
	authHandler := handlers.NewAuthHandler(authService, log)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "contactbook",
		Views:        views.New(),
		ErrorHandler: errorHandler(log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- API Routes ---
	api := app.Group("/api", middleware.Identify(middleware.IdentifyConfig{
		Resolver: userService,
		Sessions: store,
		Tokens:   authService,
		Unscoped: !cfg.APIOwnerScoping,
		Log:      log,
	}))
	// Authentication routes (public)
	authHandler.RegisterRoutes(api, loginLimit)
	// Protected routes
	protected := api.Group("", middleware.Protect(middleware.JSONDeny, middleware.Authenticated()))
	apiHandler.RegisterRoutes(protected)

	// --- HTML Routes ---
	web := app.Group("", middleware.Identify(middleware.IdentifyConfig{
		Resolver: userService,
		Sessions: store,
		Log:      log,
	}))
	webHandler.RegisterRoutes(web, loginLimit)

	return app
}

// errorHandler answers errors that escaped the handlers: JSON under /api, the
// error page everywhere else.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}

		if strings.HasPrefix(c.Path(), "/api") {
			return c.Status(code).JSON(fiber.Map{"message": message})
		}
		return c.Status(code).Render("error", fiber.Map{
			"Title":   message,
			"Status":  code,
			"Message": message,
			"Caller":  middleware.CallerFrom(c),
		}, "layouts/main")
	}
}
