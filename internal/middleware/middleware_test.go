package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/AnshRaj112/devicehub-backend/internal/auth"
	"github.com/AnshRaj112/devicehub-backend/internal/credentials"
)

func TestRequireDevice(t *testing.T) {
	store := credentials.New()
	token, err := store.Issue("device-a")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	a := auth.NewAuthenticator(store)

	var reached bool
	var gotID string
	h := RequireDevice(a, HeaderToken)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		gotID, _ = DeviceID(r.Context())
	}))

	tests := []struct {
		name        string
		token       string
		wantStatus  int
		wantReached bool
	}{
		{name: "missing token", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", token: "nope", wantStatus: http.StatusUnauthorized},
		{name: "valid token", token: token, wantStatus: http.StatusOK, wantReached: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached, gotID = false, ""
			req := httptest.NewRequest(http.MethodGet, "/api/fetch/all", nil)
			if tt.token != "" {
				req.Header.Set(auth.HeaderToken, tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if reached != tt.wantReached {
				t.Fatalf("handler reached = %v, want %v", reached, tt.wantReached)
			}
			if tt.wantReached && gotID != "device-a" {
				t.Fatalf("device id in context = %q", gotID)
			}
			if !tt.wantReached && rec.Body.String() != `{"error":"Invalid or missing API token"}` {
				t.Fatalf("body = %s", rec.Body.String())
			}
		})
	}
}

func TestHeaderOrQueryToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/feed?token=from-query", nil)
	if got := HeaderOrQueryToken(req); got != "from-query" {
		t.Fatalf("query token = %q", got)
	}
	req.Header.Set(auth.HeaderToken, "from-header")
	if got := HeaderOrQueryToken(req); got != "from-header" {
		t.Fatalf("header should win, got %q", got)
	}
}

func TestAdminOnly(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	open := AdminOnly("")(ok)
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/devices", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("open gate status = %d", rec.Code)
	}

	gated := AdminOnly("s3cret")(ok)
	for header, want := range map[string]int{"": http.StatusUnauthorized, "wrong": http.StatusUnauthorized, "s3cret": http.StatusNoContent} {
		req := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
		if header != "" {
			req.Header.Set(HeaderAdminToken, header)
		}
		rec := httptest.NewRecorder()
		gated.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("admin header %q status = %d, want %d", header, rec.Code, want)
		}
	}
}

func TestRequestLogAssignsID(t *testing.T) {
	h := RequestLog(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, err := uuid.Parse(rec.Header().Get(headerRequestID)); err != nil {
		t.Fatalf("request id %q is not a uuid", rec.Header().Get(headerRequestID))
	}

	incoming := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerRequestID, incoming)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get(headerRequestID) != incoming {
		t.Fatal("well-formed incoming request id not reused")
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get(headerCacheControl) != "no-store" || rec.Header().Get(headerXContentTypeOptions) != "nosniff" {
		t.Fatalf("headers = %v", rec.Header())
	}
}
