package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/AnshRaj112/devicehub-backend/internal/auth"
)

// CORS answers preflight requests and sets CORS headers for the allowed origins.
// Device tokens travel in a custom header, so it must be listed explicitly.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", auth.HeaderToken, HeaderAdminToken, "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
