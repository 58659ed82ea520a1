package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/clubroll/clubroll/internal/auth/http"
	"github.com/clubroll/clubroll/internal/auth/service"
	"github.com/clubroll/clubroll/internal/auth/session"
	sessionmemory "github.com/clubroll/clubroll/internal/auth/session/drivers/memory"
	sessionredis "github.com/clubroll/clubroll/internal/auth/session/drivers/redis"
	"github.com/clubroll/clubroll/internal/auth/store"
	"github.com/clubroll/clubroll/internal/auth/store/drivers/sqlite"
	"github.com/clubroll/clubroll/pkg/cryptox"
	"github.com/clubroll/clubroll/pkg/jwtx"
	"github.com/clubroll/clubroll/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	sessions session.Store
	codec    *jwtx.Codec

	// Services
	authService  *service.AuthService
	adminService *service.AdminAuthService
	userService  *service.UserAuthService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "clubroll-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	codec, err := jwtx.NewCodec(cfg.Secret, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec (is AUTH_SECRET set?): %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initSessionStore(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.sessions.Close(); err != nil {
		app.logger.Error("error closing session store", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the principal database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initSessionStore connects the session backend. The in-memory backend
// is for local development only: sessions do not survive a restart and
// are not shared across instances.
func (app *Application) initSessionStore() error {
	switch app.cfg.SessionBackend {
	case "memory":
		app.logger.Warn("using in-memory session store; sessions are lost on restart")
		app.sessions = sessionmemory.NewStore()
		return nil
	case "redis", "":
		sessions, err := sessionredis.NewStore(sessionredis.Config{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
			TLS:      app.cfg.RedisTLS,
		})
		if err != nil {
			return fmt.Errorf("failed to connect session store: %w", err)
		}
		app.sessions = sessions
		return nil
	default:
		return fmt.Errorf("unknown session backend %q", app.cfg.SessionBackend)
	}
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Tokens: &service.TokenService{
			Codec:      app.codec,
			Sessions:   app.sessions,
			AccessTTL:  app.cfg.AccessTokenTTL,
			RefreshTTL: app.cfg.RefreshTokenTTL,
		},
		Revoker: &service.SessionService{
			Codec:    app.codec,
			Sessions: app.sessions,
		},
	}

	app.adminService = &service.AdminAuthService{Store: app.db, Auth: app.authService}
	app.userService = &service.UserAuthService{Store: app.db, Auth: app.authService}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.sessions, app.logger)

	router.AuthService = app.authService
	router.AdminService = app.adminService
	router.UserService = app.userService
	router.CookieSecure = app.cfg.Env != "dev"
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router,
	}
}
