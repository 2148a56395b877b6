package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/AnshRaj112/devicehub-backend/internal/auth"
	"github.com/AnshRaj112/devicehub-backend/internal/registry"
	"github.com/AnshRaj112/devicehub-backend/pkg/utils"
)

// maxBodyBytes caps upload bodies; gallery metadata for large libraries is the biggest payload
const maxBodyBytes = 10 << 20

var errEmptyBody = errors.New("empty request body")

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse acknowledges an upload
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps a service error onto the HTTP taxonomy.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *utils.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, registry.ErrDeviceNotFound):
		writeError(w, http.StatusNotFound, "Device not found")
	default:
		log.Printf("ERROR: %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeBody reads a JSON object into dst. An empty body is reported as errEmptyBody
// so callers can decide whether the fields it would carry are optional.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

// decodeOptionalBody is decodeBody for uploads, where every field may be absent.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := decodeBody(w, r, dst); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
