package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"fleet-routing-service/internal/api/dto"
	"fleet-routing-service/internal/matrix"
	"fleet-routing-service/internal/ports"
)

type MatrixHandler struct {
	Mgr *matrix.Manager
}

// Refresh recomputes distances for every location flagged pending.
// Safe to call repeatedly; a run with nothing pending is a no-op.
func (h *MatrixHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summary, err := h.Mgr.RefreshPending(r.Context())
	if err != nil {
		log.Printf("matrix refresh failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RefreshResponse{
		Pending:         summary.Pending,
		Processed:       summary.Processed,
		PairsComputed:   summary.PairsComputed,
		PairErrors:      summary.PairErrors,
		FailedLocations: summary.FailedLocations,
	})
}

// Distance answers the travel cost between two locations, computing
// and caching the pair on first request.
func (h *MatrixHandler) Distance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	from, err := strconv.ParseInt(r.URL.Query().Get("from"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "from must be a location id")
		return
	}
	to, err := strconv.ParseInt(r.URL.Query().Get("to"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "to must be a location id")
		return
	}

	km, minutes, err := h.Mgr.Distance(r.Context(), from, to)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "unknown location pair")
		return
	}
	if err != nil {
		log.Printf("distance lookup failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.DistanceResponse{
		From:       from,
		To:         to,
		DistanceKm: km,
		TimeMin:    minutes,
	})
}
