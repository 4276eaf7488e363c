package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teklifbul/mukayese-backend/api/controllers"
	"github.com/teklifbul/mukayese-backend/api/middleware"
	"github.com/teklifbul/mukayese-backend/internal/reports"
	"github.com/teklifbul/mukayese-backend/pkg/config"
	"github.com/teklifbul/mukayese-backend/pkg/db"
	"github.com/teklifbul/mukayese-backend/pkg/logger"
	"github.com/teklifbul/mukayese-backend/pkg/metrics"
	"github.com/teklifbul/mukayese-backend/pkg/redis"
)

// Dependencies groups what the router hands to controllers. RedisPinger,
// RateStore and ExportLimiter may be nil.
type Dependencies struct {
	DB             db.Pinger
	RedisPinger    redis.Pinger
	Reports        reports.Service
	Rates          controllers.ActiveRates
	RateStore      controllers.RateSaver
	ExportLimiter  middleware.RateLimiter
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.RedisPinger))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1/compare", func(r chi.Router) {
		r.Get("/", controllers.Compare(deps.Reports, logg))
		r.Post("/", controllers.CompareInline(deps.Reports, logg))
		r.Get("/savings", controllers.CompareSavings(deps.Reports, logg))
		r.Get("/ranking/{productCode}", controllers.CompareRanking(deps.Reports, logg))
	})

	r.Route("/api/v1/export", func(r chi.Router) {
		r.With(middleware.RateLimit("export", deps.ExportLimiter, logg)).
			Get("/compare", controllers.ExportComparison(deps.Reports, logg))
	})

	r.Route("/api/v1/fx", func(r chi.Router) {
		r.Get("/rates", controllers.ListRates(deps.Rates))
		r.Put("/rates", controllers.ReplaceRates(deps.Rates, deps.RateStore, cfg.FX.DeriveInverse, logg))
	})

	return r
}
