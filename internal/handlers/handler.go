// Package handlers maps HTTP requests onto the ingestion service.
package handlers

import (
	"net/http"

	"github.com/AnshRaj112/devicehub-backend/internal/events"
	"github.com/AnshRaj112/devicehub-backend/internal/services"
)

// Version is reported by the index route
const Version = "1.0.0"

// Handler serves every route. Device-scoped methods expect RequireDevice to have run.
type Handler struct {
	svc *services.IngestionService
	hub *events.Hub
}

// New returns a Handler. hub may be nil, which disables the live feed.
func New(svc *services.IngestionService, hub *events.Hub) *Handler {
	return &Handler{svc: svc, hub: hub}
}

// Index describes the API
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Device Telemetry API",
		"version": Version,
		"endpoints": map[string]string{
			"auth":    "/api/auth/register, /api/auth/login",
			"data":    "/api/data/location, /api/data/contacts, /api/data/sms, /api/data/gallery",
			"fetch":   "/api/fetch/all, /api/fetch/locations, /api/fetch/contacts, /api/fetch/sms, /api/fetch/gallery",
			"devices": "/api/devices",
			"feed":    "/ws/feed",
		},
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}
