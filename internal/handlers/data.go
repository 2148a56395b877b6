package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/AnshRaj112/devicehub-backend/internal/middleware"
	"github.com/AnshRaj112/devicehub-backend/internal/models"
)

type contactsRequest struct {
	Contacts []json.RawMessage `json:"contacts"`
}

type smsRequest struct {
	SMS []models.SMSInput `json:"sms"`
}

type galleryRequest struct {
	Gallery []json.RawMessage `json:"gallery"`
}

// deviceID is always present behind RequireDevice.
func deviceID(r *http.Request) string {
	id, _ := middleware.DeviceID(r.Context())
	return id
}

// UploadLocation appends one location fix
func (h *Handler) UploadLocation(w http.ResponseWriter, r *http.Request) {
	var req models.LocationInput
	if !decodeOptionalBody(w, r, &req) {
		return
	}

	if _, err := h.svc.UploadLocation(r.Context(), deviceID(r), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Location saved"})
}

// UploadContacts replaces the contact list
func (h *Handler) UploadContacts(w http.ResponseWriter, r *http.Request) {
	var req contactsRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}

	n, err := h.svc.UploadContacts(r.Context(), deviceID(r), req.Contacts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: fmt.Sprintf("%d contacts saved", n)})
}

// UploadSMS appends SMS entries
func (h *Handler) UploadSMS(w http.ResponseWriter, r *http.Request) {
	var req smsRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}

	n, err := h.svc.UploadSMS(r.Context(), deviceID(r), req.SMS)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: fmt.Sprintf("%d SMS entries saved", n)})
}

// UploadGallery replaces the gallery metadata
func (h *Handler) UploadGallery(w http.ResponseWriter, r *http.Request) {
	var req galleryRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}

	n, err := h.svc.UploadGallery(r.Context(), deviceID(r), req.Gallery)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: fmt.Sprintf("%d gallery items saved", n)})
}
