package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/reputation-service/internal/service"
	"github.com/utafrali/reputation-service/pkg/health"
	"github.com/utafrali/reputation-service/pkg/middleware"
)

// RouterConfig carries the optional knobs of the HTTP surface.
type RouterConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	PprofCIDRs     []string
	Stop           <-chan struct{}
}

// NewRouter creates a chi router with all reputation service routes
// registered. Mutating endpoints sit behind signature verification.
func NewRouter(
	reviewService *service.ReviewService,
	reputationService *service.ReputationService,
	verifier RequestVerifier,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("reputation-service"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics)
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Stop))
	}

	// Operational endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	if len(cfg.PprofCIDRs) > 0 {
		r.Group(func(r chi.Router) {
			r.Use(middleware.IPAllowlist(cfg.PprofCIDRs))
			middleware.RegisterPprof(r)
		})
	}

	reviewHandler := NewReviewHandler(reviewService, logger)
	reputationHandler := NewReputationHandler(reputationService, logger)
	searchHandler := NewSearchHandler(reviewService, logger)

	r.Route("/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public reads
		r.Get("/timestamp", Timestamp)
		r.Get("/user/{reviewee}", reputationHandler.Get)
		r.Get("/search/review", searchHandler.Search)

		// Signed writes
		r.Group(func(r chi.Router) {
			r.Use(RequireSignature(verifier))

			r.Post("/review/submit", reviewHandler.Submit)
			r.Put("/review/submit", reviewHandler.Submit)
			r.Post("/review/delete", reviewHandler.Delete)
		})
	})

	return r
}
