package handlers

import (
	"net/http"

	"github.com/AnshRaj112/devicehub-backend/internal/models"
	"github.com/AnshRaj112/devicehub-backend/internal/services"
)

// RegisterRequest is sent by a device on first start
type RegisterRequest struct {
	DeviceName     string `json:"device_name"`
	Model          string `json:"model,omitempty"`
	AndroidVersion string `json:"android_version,omitempty"`
}

// RegisterResponse carries the only copy of the device's token
type RegisterResponse struct {
	Success  bool   `json:"success"`
	DeviceID string `json:"device_id"`
	APIToken string `json:"api_token"`
}

// LoginRequest checks a previously issued token
type LoginRequest struct {
	APIToken string `json:"api_token"`
}

// LoginResponse identifies the device a token belongs to
type LoginResponse struct {
	Success    bool              `json:"success"`
	DeviceID   string            `json:"device_id"`
	DeviceInfo models.DeviceInfo `json:"device_info"`
}

// Register handles device registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "device_name required")
		return
	}

	reg, err := h.svc.Register(r.Context(), services.RegisterInput{
		DeviceName:     req.DeviceName,
		Model:          req.Model,
		AndroidVersion: req.AndroidVersion,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		Success:  true,
		DeviceID: reg.Device.ID,
		APIToken: reg.APIToken,
	})
}

// Login resolves a token to its device
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "api_token required")
		return
	}

	dev, err := h.svc.Login(r.Context(), req.APIToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Success:    true,
		DeviceID:   dev.ID,
		DeviceInfo: dev.Info(),
	})
}
