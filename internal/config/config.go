// Package config loads runtime settings from the environment (and an optional
// .env file) through viper.
package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all runtime configuration values.
type Config struct {
	Env  string
	Port string

	DBDriver    string // sqlite, postgres or mysql
	DatabaseDSN string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	SessionCookie string
	SessionTTL    time.Duration
	CookieSecure  bool
	RedisURL      string // optional; sessions and rate limits stay in memory when empty

	RabbitMQURL    string // optional; contact events are not published when empty
	EventsExchange string

	AdminUsername string
	AdminEmail    string
	AdminPassword string

	PageSize        int
	LoginRateLimit  int // attempts per minute and IP; 0 disables
	APIOwnerScoping bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "contactbook.db")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("SESSION_COOKIE", "contactbook_session")
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("EVENTS_EXCHANGE", "contacts")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_EMAIL", "admin@adm.in")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("API_OWNER_SCOPING", true)
}

// Load reads a .env file when present, then builds a Config from v.
func Load(v *viper.Viper) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	SetDefaults(v)
	v.AutomaticEnv() // Load environment variables

	cfg := Config{
		Env:             v.GetString("APP_ENV"),
		Port:            v.GetString("APP_PORT"),
		DBDriver:        v.GetString("DB_DRIVER"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTTTL:          v.GetDuration("JWT_TTL"),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		SessionCookie:   v.GetString("SESSION_COOKIE"),
		SessionTTL:      v.GetDuration("SESSION_TTL"),
		CookieSecure:    v.GetBool("COOKIE_SECURE"),
		RedisURL:        v.GetString("REDIS_URL"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		EventsExchange:  v.GetString("EVENTS_EXCHANGE"),
		AdminUsername:   v.GetString("ADMIN_USERNAME"),
		AdminEmail:      v.GetString("ADMIN_EMAIL"),
		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
		PageSize:        v.GetInt("PAGE_SIZE"),
		LoginRateLimit:  v.GetInt("LOGIN_RATE_LIMIT"),
		APIOwnerScoping: v.GetBool("API_OWNER_SCOPING"),
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return errors.New("DB_DRIVER must be one of sqlite, postgres, mysql")
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Env == "prod" && c.JWTSecret == "change-me" {
		return errors.New("JWT_SECRET must be set in prod")
	}
	return nil
}

// IsDev reports whether the server runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}
