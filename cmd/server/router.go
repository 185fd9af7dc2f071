package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tsplhq/registration-api/internal/api"
	apiMiddleware "github.com/tsplhq/registration-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.accountService, app.jwtService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	adminMiddleware := apiMiddleware.NewAdminMiddleware(app.accountStore)

	seasonHandler := api.NewSeasonHandler(app.seasonStore)
	registrationHandler := api.NewRegistrationHandler(app.registrationService)
	uploadHandler := api.NewUploadHandler(app.jobs)
	mailingHandler := api.NewMailingHandler(app.mailingService)
	settingsHandler := api.NewSettingsHandler(app.settingsStore)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		// Public reads
		r.Get("/seasons", seasonHandler.List)
		r.Get("/seasons/{seasonID}", seasonHandler.Get)
		r.Get("/settings", settingsHandler.Get)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/seasons/{seasonID}/registrations", registrationHandler.Create)
			r.Get("/seasons/{seasonID}/registrations/me", registrationHandler.GetMine)
			r.Put("/seasons/{seasonID}/registrations/me", registrationHandler.Update)

			if app.paymentService != nil {
				paymentHandler := api.NewPaymentHandler(app.paymentService)
				r.Post("/payments/orders", paymentHandler.CreateOrder)
				r.Post("/payments/callback", paymentHandler.Callback)
			}

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(adminMiddleware.RequireAdmin)

				r.Post("/seasons", seasonHandler.Create)
				r.Put("/settings", settingsHandler.Save)
				r.Get("/seasons/{seasonID}/registrations", registrationHandler.List)
				r.Get("/seasons/{seasonID}/registrations/export", registrationHandler.Export)
				r.Post("/seasons/{seasonID}/uploads", uploadHandler.Upload)
				r.Post("/seasons/{seasonID}/mailings", mailingHandler.Send)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
