package api

import (
	"net/http"

	"fleet-routing-service/internal/api/handlers"
	"fleet-routing-service/internal/matrix"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware
// of concrete adapters).
func NewRouter(svc *services.Service, matrixMgr *matrix.Manager) http.Handler {
	mux := http.NewServeMux()

	optimizeHandler := &handlers.OptimizeHandler{Svc: svc}
	matrixHandler := &handlers.MatrixHandler{Mgr: matrixMgr}
	jobHandler := &handlers.JobHandler{Svc: svc}

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/optimize", optimizeHandler.Optimize)
	mux.HandleFunc("/matrix/refresh", matrixHandler.Refresh)
	mux.HandleFunc("/distance", matrixHandler.Distance)
	mux.HandleFunc("/jobs", jobHandler.Jobs)
	mux.HandleFunc("/jobs/complete", jobHandler.Complete)

	return requestMiddleware(mux)
}
