package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/AnshRaj112/devicehub-backend/internal/auth"
	"github.com/AnshRaj112/devicehub-backend/internal/handlers"
	"github.com/AnshRaj112/devicehub-backend/internal/middleware"
)

// Options configures the router middleware stack
type Options struct {
	AllowedOrigins []string
	AdminToken     string
	TrustProxy     bool
	Production     bool
}

// NewRouter builds the full HTTP surface with its middleware stack.
func NewRouter(h *handlers.Handler, a *auth.Authenticator, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLog(opts.TrustProxy))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.Production {
		r.Use(middleware.SecurityHeaders)
	}

	SetupRoutes(r, h, a, opts.AdminToken)
	return r
}

func SetupRoutes(r chi.Router, h *handlers.Handler, a *auth.Authenticator, adminToken string) {
	r.Get("/", h.Index)
	r.Get("/health", h.Health)

	// Registration and login carry no token
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)

	r.With(middleware.AdminOnly(adminToken)).Get("/api/devices", h.ListDevices)

	// Device-scoped routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireDevice(a, middleware.HeaderToken))

		r.Post("/api/data/location", h.UploadLocation)
		r.Post("/api/data/contacts", h.UploadContacts)
		r.Post("/api/data/sms", h.UploadSMS)
		r.Post("/api/data/gallery", h.UploadGallery)

		r.Get("/api/fetch/all", h.FetchAll)
		r.Get("/api/fetch/locations", h.FetchLocations)
		r.Get("/api/fetch/contacts", h.FetchContacts)
		r.Get("/api/fetch/sms", h.FetchSMS)
		r.Get("/api/fetch/gallery", h.FetchGallery)
	})

	// Browsers cannot set headers on a websocket handshake
	r.With(middleware.RequireDevice(a, middleware.HeaderOrQueryToken)).Get("/ws/feed", h.Feed)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not found"}`))
	})
}
