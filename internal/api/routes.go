package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"nps-hikes/internal/db"
)

// NewRouter creates and configures the Chi router
func NewRouter(database *db.DB, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(RequestLogger(log))
	r.Use(CORS)

	// Create handlers
	h := NewHandlers(database)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/parks", h.ListParks)
		r.Get("/parks/{parkCode}", h.GetPark)
		r.Get("/parks/{parkCode}/boundary", h.GetParkBoundary)
		r.Get("/parks/{parkCode}/trails", h.ListParkTrails)
		r.Get("/trails/{trailID}/elevation", h.GetTrailElevation)
	})

	return r
}
