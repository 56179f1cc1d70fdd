package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mapleime/doctor-portal/internal/appointments"
	"github.com/mapleime/doctor-portal/internal/geo"
	httpmiddleware "github.com/mapleime/doctor-portal/internal/http/middleware"
	"github.com/mapleime/doctor-portal/internal/ops"
	"github.com/mapleime/doctor-portal/internal/prefs"
	"github.com/mapleime/doctor-portal/internal/settings"
	"github.com/mapleime/doctor-portal/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	PrefsHandler        *prefs.Handler
	SettingsHandler     *settings.Handler
	GeoHandler          *geo.Handler
	OpsHandler          *ops.Handler
	MetricsHandler      http.Handler
	SessionJWTSecret    string
	CORSAllowedOrigins  []string

	// Per-IP request rate limiting; disabled when RateLimitPerSec is 0.
	RateLimitPerSec float64
	RateLimitBurst  int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSec > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Session-protected portal API
	r.Route("/api", func(api chi.Router) {
		api.Use(httpmiddleware.SessionJWT(cfg.SessionJWTSecret))

		if cfg.AppointmentsHandler != nil {
			api.Mount("/appointments", cfg.AppointmentsHandler.Routes())
		}
		if cfg.PrefsHandler != nil {
			api.Mount("/prefs", cfg.PrefsHandler.Routes())
		}
		if cfg.SettingsHandler != nil {
			api.Mount("/settings", cfg.SettingsHandler.Routes())
		}
		if cfg.GeoHandler != nil {
			api.Mount("/geo", cfg.GeoHandler.Routes())
		}
		if cfg.OpsHandler != nil {
			api.Mount("/ops", cfg.OpsHandler.Routes())
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
