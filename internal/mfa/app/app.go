package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/aussiebroadwan/mfa/internal/mfa/http"
	"github.com/aussiebroadwan/mfa/internal/mfa/service"
	"github.com/aussiebroadwan/mfa/internal/mfa/store"
	"github.com/aussiebroadwan/mfa/internal/mfa/store/drivers/postgres"
	"github.com/aussiebroadwan/mfa/internal/mfa/store/drivers/sqlite"
	"github.com/aussiebroadwan/mfa/pkg/cryptox"
	"github.com/aussiebroadwan/mfa/pkg/jwtx"
	"github.com/aussiebroadwan/mfa/pkg/slogx"
	"github.com/aussiebroadwan/mfa/pkg/totpx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the MFA service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	keys     *jwtx.KeySet
	verifier jwtx.Verifier
	registry *prometheus.Registry

	// Services
	mfaService *service.MFAService
	refresher  *JWKSRefresher // nil unless keys come from a JWKS URL

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "mfa-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		registry: prometheus.NewRegistry(),
	}

	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	keys, verifier, refresher, err := InitVerifierKeys(ctx, app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize access token keys: %w", err)
	}
	app.keys = keys
	app.verifier = verifier
	app.refresher = refresher

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	if app.refresher != nil {
		app.refresher.Start()
	}

	app.logger.Info("mfa service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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
	app.logger.Info("shutting down mfa service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.refresher != nil {
		app.refresher.Stop()
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("mfa service stopped")
	return nil
}

// Handler exposes the routed HTTP handler, mainly for in-process tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// initDatabase opens the configured backend and applies migrations.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case "postgres":
		if app.cfg.DatabaseURL == "" {
			return fmt.Errorf("MFA_DATABASE_URL is required for the postgres driver")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	case "sqlite", "":
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	default:
		return fmt.Errorf("unsupported database driver %q", app.cfg.DatabaseDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initServices loads the at-rest secrets and builds the MFA service.
func (app *Application) initServices() error {
	pepper, err := cryptox.LoadOrGeneratePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	masterKey, ephemeral, err := cryptox.LoadMasterKey(app.cfg.MasterKeyPath)
	if err != nil {
		return fmt.Errorf("failed to load master key: %w", err)
	}
	if ephemeral {
		app.logger.Warn("no master key configured, TOTP secrets will not survive a restart")
	} else {
		app.logger.Info("master key path configured", "path", app.cfg.MasterKeyPath)
	}

	sealer, err := cryptox.NewSealer(masterKey)
	if err != nil {
		return fmt.Errorf("failed to initialize sealer: %w", err)
	}

	alg, err := totpx.ParseAlgorithm(app.cfg.TOTPAlgorithm)
	if err != nil {
		return fmt.Errorf("invalid MFA_TOTP_ALGORITHM: %w", err)
	}

	app.mfaService = service.NewMFAService(service.Options{
		Store:           app.db,
		Engine:          totpx.NewEngine(alg, nil),
		Hasher:          cryptox.NewHasher(pepper),
		Sealer:          sealer,
		Metrics:         service.NewMetrics(app.registry),
		Issuer:          app.cfg.Issuer,
		BackupCodeCount: app.cfg.BackupCodeCount,
	})

	app.logger.Info("mfa service configured",
		"issuer", app.cfg.Issuer,
		"totp_algorithm", app.cfg.TOTPAlgorithm,
		"backup_code_count", app.cfg.BackupCodeCount,
	)
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.verifier,
		BuildVersion,
		app.db,
		app.registry,
		app.logger,
	)

	router.MFAService = app.mfaService
	router.RequiredScope = app.cfg.RequiredScope
	router.Limits = httpapi.RateLimits{
		Strict:   app.cfg.StrictLimit,
		Moderate: app.cfg.ModerateLimit,
		Lenient:  app.cfg.LenientLimit,
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
