// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/wpml2pll/internal/middleware"
)

// RouterConfig wires the handlers into a router.
type RouterConfig struct {
	Migrate *MigrateHandler
	Status  *StatusHandler
	Health  *HealthHandler
	Events  *EventsHandler
	Metrics http.Handler

	// Token guards the migration endpoints when set.
	Token string
	// MigrateRPS and MigrateBurst limit migrate calls per client.
	MigrateRPS   float64
	MigrateBurst int

	IsDevelopment bool
}

// readTimeout bounds the read-only endpoints. Migration steps are unbounded.
const readTimeout = 30 * time.Second

// NewRouter returns the HTTP routes:
//
//	POST /migrate      run one step
//	GET  /status       recorded progress
//	GET  /events       recent warnings and errors
//	GET  /health       database health
//	GET  /health/live  liveness
//	GET  /metrics      Prometheus metrics
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(readTimeout))
		r.Get("/health", cfg.Health.Health)
		r.Get("/health/live", cfg.Health.Liveness)
		if cfg.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", cfg.Metrics)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(cfg.Token))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(readTimeout))
			r.Get("/status", cfg.Status.Status)
			r.Get("/events", cfg.Events.List)
		})

		r.Group(func(r chi.Router) {
			if cfg.MigrateRPS > 0 {
				burst := max(cfg.MigrateBurst, 1)
				r.Use(middleware.NewGlobalRateLimiter(cfg.MigrateRPS, burst).Middleware())
			}
			r.Post("/migrate", cfg.Migrate.Migrate)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, "not_found", "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})
	return r
}
