package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AnshRaj112/devicehub-backend/internal/auth"
	"github.com/AnshRaj112/devicehub-backend/internal/registry"
	"github.com/AnshRaj112/devicehub-backend/pkg/utils"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", fmt.Errorf("register device: %w", utils.Required("device_name", "")), http.StatusBadRequest, "device_name required"},
		{"unauthorized", auth.ErrUnauthorized, http.StatusUnauthorized, "Invalid token"},
		{"not found", fmt.Errorf("fetch: %w", registry.ErrDeviceNotFound), http.StatusNotFound, "Device not found"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), tt.err)

			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if rec.Code != tt.status || body.Error != tt.message {
				t.Errorf("got %d %q, want %d %q", rec.Code, body.Error, tt.status, tt.message)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestDecodeBody(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := decodeBody(rec, req, &dst); !errors.Is(err, errEmptyBody) {
		t.Errorf("empty body err = %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	if err := decodeBody(rec, req, &dst); err == nil || errors.Is(err, errEmptyBody) {
		t.Errorf("truncated body err = %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if !decodeOptionalBody(rec, req, &dst) {
		t.Error("optional body rejected an empty request")
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("[1,2"))
	if decodeOptionalBody(rec, req, &dst) || rec.Code != http.StatusBadRequest {
		t.Errorf("malformed optional body: ok, status %d", rec.Code)
	}
}

func TestFeedWithoutHub(t *testing.T) {
	h := New(nil, nil)
	rec := httptest.NewRecorder()
	h.Feed(rec, httptest.NewRequest(http.MethodGet, "/ws/feed", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}
