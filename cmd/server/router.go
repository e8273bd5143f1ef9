package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/customer-data/internal/api"
	apiMiddleware "github.com/phrazzld/customer-data/internal/api/middleware"
)

// healthPingTimeout bounds the database check of the health endpoint.
const healthPingTimeout = 2 * time.Second

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	customerHandler := api.NewCustomerHandler(app.customerMatcher, app.logger)

	r.Route("/api", func(r chi.Router) {
		customerHandler.RegisterRoutes(r)
	})

	r.Get("/health", app.handleHealth)

	return r
}

// handleHealth reports 200 when the database answers a ping and 503 otherwise.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	status, body := http.StatusOK, "OK"
	if err := app.db.PingContext(ctx); err != nil {
		app.logger.Warn("Health check failed", "error", err)
		status, body = http.StatusServiceUnavailable, "database unavailable"
	}

	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		app.logger.Error("Failed to write health check response", "error", err)
	}
}
