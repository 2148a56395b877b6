package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"

	"github.com/AnshRaj112/devicehub-backend/internal/auth"
)

// HeaderAdminToken gates operator-only routes when an admin token is configured.
const HeaderAdminToken = "X-Admin-Token"

type ctxKey int

const deviceIDKey ctxKey = iota

// WithDeviceID attaches an authenticated device id to ctx.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDKey, deviceID)
}

// DeviceID returns the device id attached by RequireDevice.
func DeviceID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(deviceIDKey).(string)
	return id, ok && id != ""
}

// TokenFunc extracts the raw token from a request.
type TokenFunc func(r *http.Request) string

// HeaderToken reads the X-API-Token header.
func HeaderToken(r *http.Request) string {
	return r.Header.Get(auth.HeaderToken)
}

// HeaderOrQueryToken also accepts ?token= for browser websocket clients that cannot set headers.
func HeaderOrQueryToken(r *http.Request) string {
	if tok := HeaderToken(r); tok != "" {
		return tok
	}
	return r.URL.Query().Get("token")
}

// RequireDevice authenticates the request before the handler runs. Rejected
// requests get 401 and never reach next.
func RequireDevice(a *auth.Authenticator, token TokenFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID, err := a.Authenticate(token(r))
			if err != nil {
				if !errors.Is(err, auth.ErrUnauthorized) {
					log.Printf("ERROR: authenticating %s %s: %v", r.Method, r.URL.Path, err)
				}
				writeError(w, http.StatusUnauthorized, "Invalid or missing API token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithDeviceID(r.Context(), deviceID)))
		})
	}
}

// AdminOnly requires X-Admin-Token to match adminToken. An empty adminToken
// leaves the route open.
func AdminOnly(adminToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if adminToken == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(HeaderAdminToken)
			if subtle.ConstantTimeCompare([]byte(got), []byte(adminToken)) != 1 {
				writeError(w, http.StatusUnauthorized, "Invalid or missing admin token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
