package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// ProviderCalls counts outbound routing-engine requests by outcome.
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_provider_calls_total", Help: "Outbound routing engine calls."},
		[]string{"outcome"},
	)
	// MatrixLookups counts distance lookups by source (redis, sql, computed, miss).
	MatrixLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "matrix_lookups_total", Help: "Distance matrix lookups by source."},
		[]string{"source"},
	)
	// RefreshBatches counts per-location refresh commits by outcome.
	RefreshBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "matrix_refresh_batches_total", Help: "Matrix refresh per-location batches."},
		[]string{"outcome"},
	)
	// SolverRuns counts solver invocations by result.
	SolverRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solver_runs_total", Help: "Routing solver runs by result."},
		[]string{"result"},
	)
	// SolverDuration records solver wall-clock time in seconds.
	SolverDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "solver_run_duration_seconds",
			Help:    "Routing solver run duration in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)
	// HTTPRequests counts served requests by route and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Served HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records end-to-end request latency in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

var regOnce sync.Once

// RegisterMetrics registers all collectors on the service registry.
func RegisterMetrics() {
	regOnce.Do(func() {
		Registry.MustRegister(ProviderCalls)
		Registry.MustRegister(MatrixLookups)
		Registry.MustRegister(RefreshBatches)
		Registry.MustRegister(SolverRuns)
		Registry.MustRegister(SolverDuration)
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
