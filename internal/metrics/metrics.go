package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)
	// RateLimited counts requests rejected by the optimize rate limiter.
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "http_rate_limited_total", Help: "Requests rejected by the rate limiter."},
	)

	// OptimizeRuns counts computed (non-cached) optimizations by mode and algorithm.
	OptimizeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_optimizations_total", Help: "Computed route optimizations."},
		[]string{"mode", "algorithm"},
	)
	// TierSolves counts per-tier solver invocations.
	TierSolves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_tier_solves_total", Help: "Per-tier solver invocations."},
		[]string{"solver", "priority"},
	)
	TierSolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "route_tier_solve_seconds", Help: "Per-tier solver duration in seconds.", Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}},
		[]string{"solver"},
	)
	TierSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "route_tier_size", Help: "Stops per solved tier.", Buckets: []float64{1, 2, 4, 8, 12, 16, 32, 64, 128, 256}},
		[]string{"solver"},
	)
	// CacheLookups counts result cache lookups by outcome (hit, miss, error).
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_cache_lookups_total", Help: "Result cache lookups."},
		[]string{"result"},
	)
)

// RegisterDefault registers all collectors on Registry. Safe to call repeatedly.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(RateLimited)
		Registry.MustRegister(OptimizeRuns)
		Registry.MustRegister(TierSolves)
		Registry.MustRegister(TierSolveDuration)
		Registry.MustRegister(TierSize)
		Registry.MustRegister(CacheLookups)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
