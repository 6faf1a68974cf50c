package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Northlight-Systems/Vigil/internal/ensemble"
	"github.com/Northlight-Systems/Vigil/internal/pulse"
	"github.com/Northlight-Systems/Vigil/internal/signals"
	"github.com/Northlight-Systems/Vigil/internal/store"
	"github.com/Northlight-Systems/Vigil/internal/tuner"
)

func NewRouter(engine *ensemble.Engine, combiner *signals.Combiner, s store.Store, p pulse.Client, tn *tuner.Tuner, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	weights := NewWeightsHandler(engine, tn, p)
	evaluations := NewEvaluationsHandler(s, p)
	risk := NewRiskHandler(combiner, p)
	admin := NewAdminHandler(s)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/weights", weights.Get)
		r.Get("/weights/summary", weights.Summary)
		r.Get("/weights/history", weights.History)

		r.Post("/evaluations", evaluations.Create)
		r.Get("/evaluations", evaluations.List)

		r.Post("/risk/score", risk.Score)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Put("/weights", weights.Override)
			r.Post("/weights/adapt", weights.Adapt)
			r.Post("/weights/reset", weights.Reset)
			r.Get("/stats", admin.Stats)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
