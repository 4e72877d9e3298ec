package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-analytics/internal/api"
	apiMiddleware "github.com/phrazzld/scry-analytics/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	studyHandler := api.NewStudyHandler(app.studyService, app.logger)
	healthHandler := api.NewHealthHandler(app.db, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/sessions", studyHandler.StartSession)
		r.Post("/sessions/{id}/complete", studyHandler.CompleteSession)

		r.Get("/analytics/dashboard", studyHandler.Dashboard)
		r.Get("/stats/level", studyHandler.LevelStatus)
	})

	r.Get("/health", healthHandler.Health)

	return r
}
