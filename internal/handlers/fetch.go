package handlers

import (
	"net/http"

	"github.com/AnshRaj112/devicehub-backend/internal/models"
)

// DevicesResponse lists every registered device.
//
// The route is unauthenticated unless ADMIN_TOKEN is configured; it exposes
// metadata of all devices, so deployments should set the admin token.
type DevicesResponse struct {
	Devices []models.Device `json:"devices"`
}

func (h *Handler) FetchAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.FetchAll(r.Context(), deviceID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *Handler) FetchLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"locations": h.svc.FetchLocations(r.Context(), deviceID(r)),
	})
}

func (h *Handler) FetchContacts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contacts": h.svc.FetchContacts(r.Context(), deviceID(r)),
	})
}

func (h *Handler) FetchSMS(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sms": h.svc.FetchSMS(r.Context(), deviceID(r)),
	})
}

func (h *Handler) FetchGallery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"gallery": h.svc.FetchGallery(r.Context(), deviceID(r)),
	})
}

func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DevicesResponse{Devices: h.svc.ListDevices(r.Context())})
}
