package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"smart-route-planner/internal/api/handlers"
	"smart-route-planner/internal/domain"
	"smart-route-planner/internal/metrics"
	"smart-route-planner/internal/services"
)

// Deps are the collaborators the HTTP layer needs.
// Limiter is optional; when nil the optimize endpoints are not throttled.
type Deps struct {
	Planner  *services.Planner
	Defaults domain.Options
	Limiter  *rate.Limiter
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	optimize := &handlers.OptimizeHandler{Planner: deps.Planner, Defaults: deps.Defaults}
	stops := &handlers.StopsHandler{Planner: deps.Planner}
	limit := rateLimitMiddleware(deps.Limiter)

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/api/optimize", limit(http.HandlerFunc(optimize.Optimize)))
	mux.Handle("/api/optimize/stored", limit(http.HandlerFunc(optimize.OptimizeStored)))
	mux.HandleFunc("/api/stops", stops.List)

	return requestIDMiddleware(loggingMiddleware(mux))
}
