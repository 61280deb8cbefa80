package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/recallkit/recall-api/internal/api"
	apiMiddleware "github.com/recallkit/recall-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenVerifier)
	itemHandler := api.NewItemHandler(app.scheduler, app.logger)
	statsHandler := api.NewStatsHandler(app.scheduler, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Item endpoints
		r.Post("/items", itemHandler.CreateItem)
		r.Get("/items/due", itemHandler.ListDue)
		r.Post("/items/{id}/review", itemHandler.RecordReview)
		r.Post("/items/{id}/postpone", itemHandler.PostponeReview)
		r.Delete("/items/{id}", itemHandler.DeleteItem)

		// Stats endpoints
		r.Get("/stats", statsHandler.GetStats)
		r.Get("/stats/retention", statsHandler.GetRetention)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
