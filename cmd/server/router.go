package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskloop/taskloop-api/internal/api"
	apiMiddleware "github.com/taskloop/taskloop-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	recurrenceHandler := api.NewRecurrenceHandler(app.recurrenceStore, app.logger)
	generationHandler := api.NewGenerationHandler(app.engine, app.runStore, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/recurrences", recurrenceHandler.List)
			r.Post("/recurrences", recurrenceHandler.Create)
			r.Get("/recurrences/{id}", recurrenceHandler.Get)
			r.Put("/recurrences/{id}", recurrenceHandler.Update)
			r.Delete("/recurrences/{id}", recurrenceHandler.Delete)
			r.Post("/recurrences/{id}/toggle", recurrenceHandler.Toggle)

			r.Post("/recurrences/generate", generationHandler.Trigger)
			r.Get("/recurrences/runs/latest", generationHandler.LatestRun)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
