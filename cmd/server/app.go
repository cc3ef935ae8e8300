package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskloop/taskloop-api/internal/config"
	"github.com/taskloop/taskloop-api/internal/generation"
	"github.com/taskloop/taskloop-api/internal/platform/postgres"
	"github.com/taskloop/taskloop-api/internal/scheduler"
	"github.com/taskloop/taskloop-api/internal/service/auth"
	"github.com/taskloop/taskloop-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore       store.UserStore
	recurrenceStore store.RecurrenceStore
	taskStore       store.TaskStore
	runStore        store.GenerationRunStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	// Generation
	engine    *generation.Engine
	scheduler *scheduler.Scheduler
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before initialization.
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

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost)
	app.recurrenceStore = postgres.NewPostgresRecurrenceStore(db)
	app.taskStore = postgres.NewPostgresTaskStore(db)
	app.runStore = postgres.NewPostgresRunStore(db)

	loc, err := cfg.Generation.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve generation timezone: %w", err)
	}

	app.engine = generation.NewEngine(
		app.recurrenceStore,
		app.taskStore,
		app.runStore,
		cfg.Generation.CutoffHour,
		loc,
		logger.With("component", "generation_engine"),
	)

	app.scheduler = scheduler.New(
		app.engine,
		app.runStore,
		cfg.Generation.CutoffHour,
		loc,
		logger.With("component", "scheduler"),
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the scheduler and the HTTP server, handling lifecycle and
// cleanup. It returns an error if the server fails to start.
func (app *application) Run(ctx context.Context) error {
	if err := app.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
