package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Depot/internal/config"
	"github.com/MikeSquared-Agency/Depot/internal/fleet"
	"github.com/MikeSquared-Agency/Depot/internal/hermes"
	"github.com/MikeSquared-Agency/Depot/internal/metrics"
	"github.com/MikeSquared-Agency/Depot/internal/store"
)

// NewRouter builds the API. h, backend and m may be nil.
func NewRouter(s store.Store, h hermes.Client, backend fleet.Source, m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", OperatorHeader},
		MaxAge:         300,
	}))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimit))

	fleetH := NewFleetHandler(s, h, backend, m, cfg, logger)
	induction := NewInductionHandler(s, h, m, cfg.Scoring.DefaultPreset, logger)
	depotH := NewDepotHandler(s, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/fleet", fleetH.List)
		r.Get("/fleet/{id}", fleetH.Get)
		r.Get("/stats", fleetH.Stats)

		r.Get("/induction/presets", induction.Presets)
		r.Post("/induction/plans", induction.CreatePlan)
		r.Get("/induction/plans", induction.ListPlans)
		r.Get("/induction/plans/{id}", induction.GetPlan)
		r.Get("/induction/explain/{train_id}", induction.Explain)
		r.Post("/induction/compare", induction.Compare)

		r.Get("/depot/bays", depotH.Bays)
		r.Get("/branding/contracts", depotH.Contracts)
		r.Get("/maintenance/jobs", depotH.MaintenanceJobs)
		r.Get("/cleaning/tasks", depotH.CleaningTasks)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Put("/fleet/{id}", fleetH.Put)
			r.Delete("/fleet/{id}", fleetH.Delete)
			r.Post("/fleet/synthetic", fleetH.Synthetic)
			r.Post("/fleet/sync", fleetH.Sync)
		})
	})

	return r
}

// NewMetricsRouter serves health and the metrics gathered by g.
func NewMetricsRouter(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return r
}
