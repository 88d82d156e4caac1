package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"contactbook/internal/app"
	"contactbook/internal/config"
	"contactbook/internal/database"
	"contactbook/internal/logger"
	"contactbook/internal/repositories"
	"contactbook/internal/services"
	"contactbook/internal/session"
	"contactbook/pkg/rabbitmq"
)

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the binary without a
// subcommand starts the server.
func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:          "contactbook",
		Short:        "Contact book web application",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("port", "", "listen address, overrides APP_PORT")
	root.PersistentFlags().String("db-driver", "", "sqlite, postgres or mysql, overrides DB_DRIVER")
	root.PersistentFlags().String("dsn", "", "database DSN, overrides DATABASE_DSN")
	_ = v.BindPFlag("APP_PORT", root.PersistentFlags().Lookup("port"))
	_ = v.BindPFlag("DB_DRIVER", root.PersistentFlags().Lookup("db-driver"))
	_ = v.BindPFlag("DATABASE_DSN", root.PersistentFlags().Lookup("dsn"))

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Migrate the database, ensure the admin account and serve HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v)
		},
	}

	ensureAdmin := &cobra.Command{
		Use:   "ensure-admin",
		Short: "Create the admin account or restore its role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(v)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			password, _ := cmd.Flags().GetString("password")
			res, err := ensureAdminAccount(cmd.Context(), cfg, log, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeBootstrap(cfg.AdminUsername, res))
			return nil
		},
	}
	ensureAdmin.Flags().String("password", "", "reset the admin password to this value")

	root.AddCommand(serve, ensureAdmin)
	root.RunE = serve.RunE
	return root
}

// setup loads the configuration and builds the logger.
func setup(v *viper.Viper) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return cfg, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}

// openDatabase connects and migrates the schema.
func openDatabase(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	db, err := database.Open(ctx, cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// ensureAdminAccount runs the admin bootstrap against a freshly opened
// database. A non-empty password replaces the configured one and resets the
// password of an existing account.
func ensureAdminAccount(ctx context.Context, cfg config.Config, log *zap.Logger, password string) (services.BootstrapResult, error) {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return services.BootstrapResult{}, err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return bootstrapAdmin(ctx, db, cfg, log, password)
}

func bootstrapAdmin(ctx context.Context, db *gorm.DB, cfg config.Config, log *zap.Logger, password string) (services.BootstrapResult, error) {
	opts := services.AdminOptions{
		Username:   cfg.AdminUsername,
		Email:      cfg.AdminEmail,
		Password:   cfg.AdminPassword,
		BcryptCost: cfg.BcryptCost,
	}
	if password != "" {
		opts.Password = password
		opts.ResetPassword = true
	}
	res, err := services.EnsureAdmin(ctx,
		repositories.NewGORMUserRepository(db),
		repositories.NewGORMProfileRepository(db),
		opts)
	if err != nil {
		return res, fmt.Errorf("ensure admin: %w", err)
	}
	log.Info("admin account checked",
		zap.String("username", opts.Username),
		zap.Bool("created", res.Created),
		zap.Bool("role_restored", res.RoleRestored),
		zap.Bool("password_reset", res.PasswordReset),
	)
	return res, nil
}

func describeBootstrap(username string, res services.BootstrapResult) string {
	switch {
	case res.Created:
		return fmt.Sprintf("Admin user %q created", username)
	case res.PasswordReset && res.RoleRestored:
		return fmt.Sprintf("Admin user %q restored to administrator, password reset", username)
	case res.PasswordReset:
		return fmt.Sprintf("Admin user %q password reset", username)
	case res.RoleRestored:
		return fmt.Sprintf("Admin user %q restored to administrator", username)
	default:
		return fmt.Sprintf("Admin user %q already exists", username)
	}
}

func runServe(ctx context.Context, v *viper.Viper) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := setup(v)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	// --- Database ---
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	if _, err := bootstrapAdmin(ctx, db, cfg, log, ""); err != nil {
		return err
	}

	deps := app.Deps{Config: cfg, DB: db, Log: log}

	// --- Optional Redis for sessions and login counters ---
	if cfg.RedisURL != "" {
		rdb, err := session.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		deps.Redis = rdb
	}

	// --- Optional RabbitMQ for contact events ---
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.EventsExchange})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		deps.Events = mqClient
	}

	fiberApp := app.New(deps)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	listenErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.Port))
		listenErr <- fiberApp.Listen(cfg.Port)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("shutting down server")
	if err := fiberApp.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
	return nil
}
