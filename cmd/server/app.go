package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tsplhq/registration-api/internal/config"
	"github.com/tsplhq/registration-api/internal/ingest"
	"github.com/tsplhq/registration-api/internal/mail"
	"github.com/tsplhq/registration-api/internal/payment"
	"github.com/tsplhq/registration-api/internal/platform/postgres"
	"github.com/tsplhq/registration-api/internal/service"
	"github.com/tsplhq/registration-api/internal/service/auth"
	"github.com/tsplhq/registration-api/internal/store"
)

// application holds the shared application dependencies to simplify wiring
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	accountStore      store.AccountStore
	seasonStore       store.SeasonStore
	registrationStore store.RegistrationStore
	paymentStore      store.PaymentStore
	settingsStore     store.SettingsStore

	// Auth
	jwtService auth.JWTService
	verifier   *auth.BcryptVerifier

	// Services
	accountService      service.AccountService
	registrationService service.RegistrationService
	paymentService      service.PaymentService
	mailingService      service.MailingService

	// Background jobs
	jobs *service.JobService
}

// newApplication creates an application instance with all dependencies
// initialized and the background job pools started.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.verifier = auth.NewBcryptVerifier()

	// Stores
	app.accountStore = postgres.NewPostgresAccountStore(db)
	app.seasonStore = postgres.NewPostgresSeasonStore(db)
	app.registrationStore = postgres.NewPostgresRegistrationStore(db)
	app.paymentStore = postgres.NewPostgresPaymentStore(db)
	app.settingsStore = postgres.NewPostgresSettingsStore(db)

	// Mail pipeline
	mailer := mail.NewSMTPMailer(cfg.SMTP)
	templates := mail.NewTemplateService()
	sender := mail.NewSender(mailer, templates, logger)

	// CSV ingestion
	importer, err := ingest.NewImporter(
		app.seasonStore,
		app.accountStore,
		app.registrationStore,
		app.verifier,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create importer: %w", err)
	}

	// Background job pools
	app.jobs, err = service.NewJobService(cfg.Jobs, importer, sender, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create job service: %w", err)
	}
	app.jobs.Start()

	// Application services
	app.accountService = service.NewAccountService(app.accountStore, app.verifier, app.verifier, logger)
	app.registrationService = service.NewRegistrationService(
		db, app.seasonStore, app.accountStore, app.registrationStore,
		app.settingsStore, logger)
	app.mailingService = service.NewMailingService(
		app.registrationStore, app.seasonStore, app.settingsStore, app.jobs, logger)

	gateway, err := app.paymentGateway(ctx)
	if err != nil {
		// Payment routes stay disabled without gateway credentials; the
		// rest of the application is unaffected.
		logger.Warn("payment gateway not configured, payment endpoints disabled", "error", err)
	} else {
		app.paymentService = service.NewPaymentService(
			db, gateway, app.paymentStore, app.registrationStore,
			app.seasonStore, app.settingsStore, app.jobs, logger)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// paymentGateway builds the gateway from config credentials, falling back to
// the operator-managed settings record.
func (app *application) paymentGateway(ctx context.Context) (payment.Gateway, error) {
	gateway, err := payment.NewRazorpayGateway(app.config.Payment)
	if err == nil {
		return gateway, nil
	}
	if !errors.Is(err, payment.ErrMissingCredentials) {
		return nil, err
	}

	settings, err := app.settingsStore.Get(ctx)
	if err != nil {
		return nil, payment.ErrMissingCredentials
	}
	return payment.NewRazorpayGateway(config.PaymentConfig{
		BaseURL:   app.config.Payment.BaseURL,
		KeyID:     settings.RazorpayKeyID,
		KeySecret: settings.RazorpayKeySecret,
	})
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.jobs != nil {
		app.jobs.Shutdown(true)
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
