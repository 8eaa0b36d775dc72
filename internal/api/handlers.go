package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"nps-hikes/internal/db"
)

// Handlers contains HTTP handlers and their dependencies
type Handlers struct {
	db *db.DB
}

// NewHandlers creates a new Handlers instance
func NewHandlers(database *db.DB) *Handlers {
	return &Handlers{db: database}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ListParks handles GET /api/parks
func (h *Handlers) ListParks(w http.ResponseWriter, r *http.Request) {
	parks, err := h.db.ListParks()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"parks": parks,
		"count": len(parks),
	})
}

// GetPark handles GET /api/parks/{parkCode}
func (h *Handlers) GetPark(w http.ResponseWriter, r *http.Request) {
	parkCode := chi.URLParam(r, "parkCode")

	park, err := h.db.GetPark(parkCode)
	if err != nil {
		http.Error(w, "park not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, park)
}

// GetParkBoundary handles GET /api/parks/{parkCode}/boundary
func (h *Handlers) GetParkBoundary(w http.ResponseWriter, r *http.Request) {
	parkCode := chi.URLParam(r, "parkCode")

	boundary, err := h.db.GetParkBoundary(parkCode)
	if err != nil {
		http.Error(w, "boundary not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, boundary)
}

// ListParkTrails handles GET /api/parks/{parkCode}/trails
func (h *Handlers) ListParkTrails(w http.ResponseWriter, r *http.Request) {
	parkCode := chi.URLParam(r, "parkCode")

	trails, err := h.db.TrailsForPark(parkCode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trails": trails,
		"count":  len(trails),
	})
}

// GetTrailElevation handles GET /api/trails/{trailID}/elevation
func (h *Handlers) GetTrailElevation(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "trailID")
	trailID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid trail ID", http.StatusBadRequest)
		return
	}

	profile, err := h.db.GetElevationProfile(trailID)
	if err != nil {
		http.Error(w, "elevation profile not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	counts, err := h.db.TableCounts()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"counts": counts,
	})
}
