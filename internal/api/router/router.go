// Package router wires the HTTP surface: health probes, metrics and the
// JWT-protected admin API.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ripplecare/event-therapy-platform/internal/availability"
	"github.com/ripplecare/event-therapy-platform/internal/fulfillment"
	httpmiddleware "github.com/ripplecare/event-therapy-platform/internal/http/middleware"
	"github.com/ripplecare/event-therapy-platform/internal/pricing"
	"github.com/ripplecare/event-therapy-platform/internal/reports"
	"github.com/ripplecare/event-therapy-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	AvailabilityHandler *availability.Handler
	FulfillmentHandler  *fulfillment.Handler
	PricingHandler      *pricing.Handler
	ReportsHandler      *reports.Handler

	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitPerSec    float64
	RateLimitBurst     int

	// ReadyCheck pings the backing stores; readyz fails while it errors.
	ReadyCheck func(ctx context.Context) error
}

// New creates the Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

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

	// Public endpoints: probes and metrics.
	r.Group(func(public chi.Router) {
		public.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		public.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
			if cfg.ReadyCheck != nil {
				ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
				defer cancel()
				if err := cfg.ReadyCheck(ctx); err != nil {
					http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
					return
				}
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin API, protected by the HMAC JWT.
	r.Route("/api/v1", func(api chi.Router) {
		if cfg.AdminAuthSecret != "" {
			api.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		}

		api.Route("/quotes/{quoteID}", func(quote chi.Router) {
			if cfg.AvailabilityHandler != nil {
				quote.Get("/availability", cfg.AvailabilityHandler.CheckQuote)
			}
			if cfg.PricingHandler != nil {
				quote.Post("/pricing/preview", cfg.PricingHandler.Preview)
			}
			if cfg.FulfillmentHandler != nil {
				quote.Post("/send", cfg.FulfillmentHandler.Send)
				quote.Post("/resend", cfg.FulfillmentHandler.Resend)
				quote.Post("/decline", cfg.FulfillmentHandler.Decline)
			}
		})
		if cfg.AvailabilityHandler != nil {
			api.Get("/availability/alternatives", cfg.AvailabilityHandler.Alternatives)
		}
		if cfg.ReportsHandler != nil {
			api.Get("/reports/pipeline", cfg.ReportsHandler.Pipeline)
		}
	})

	return r
}
