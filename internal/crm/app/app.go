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
	"time"

	httpapi "github.com/aussiebroadwan/salesdesk/internal/crm/http"
	"github.com/aussiebroadwan/salesdesk/internal/crm/service"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
	"github.com/aussiebroadwan/salesdesk/pkg/jwtx"
	"github.com/aussiebroadwan/salesdesk/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application wires the CRM service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	authService         *service.AuthService
	recordService       *service.RecordService
	reportService       *service.ReportService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config, component string) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: component,
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg, "crm-service"),
	}

	db, err := OpenStore(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := app.initServices(); err != nil {
		_ = db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// NewAuthService builds the auth service for cfg over st.
func NewAuthService(cfg Config, st store.Store, logger *slog.Logger) (*service.AuthService, error) {
	secret, err := signingSecret(cfg, logger)
	if err != nil {
		return nil, err
	}
	signer, err := jwtx.NewSignerHS256(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}

	var roles service.RolePolicy = service.EmailHeuristicPolicy{}
	if cfg.RolePolicy == RolePolicyAllowList {
		roles = service.NewAllowListPolicy(cfg.AdminEmails)
	} else {
		logger.Warn("email heuristic role policy enabled; any address containing \"admin\" becomes an administrator")
	}

	return &service.AuthService{
		Store:      st,
		Hasher:     service.NewPasswordHasher(cfg.BcryptCost, cfg.HashConcurrency),
		Signer:     signer,
		Verifier:   jwtx.NewVerifierHS256(secret, cfg.Issuer, nil),
		Roles:      roles,
		Issuer:     cfg.Issuer,
		SessionTTL: cfg.SessionTTL,
	}, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("crm service starting", "port", app.cfg.Port, "version", BuildVersion, "store", app.db.Name())

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
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

// Shutdown drains HTTP traffic, stops background work and closes storage.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down crm service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("crm service stopped")
	return nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) initServices() error {
	auth, err := NewAuthService(app.cfg, app.db, app.logger)
	if err != nil {
		return err
	}
	app.authService = auth
	app.recordService = &service.RecordService{Store: app.db}
	app.reportService = &service.ReportService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.SessionRetention,
	)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger, httpapi.Options{
		RateLimits:     app.cfg.RateLimits,
		SecureCookie:   app.cfg.IsProduction(),
		AllowedOrigins: app.cfg.CORSAllowedOrigins,
	})

	router.AuthService = app.authService
	router.RecordService = app.recordService
	router.ReportService = app.reportService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
