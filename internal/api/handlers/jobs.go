package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"fleet-routing-service/internal/ports"
	"fleet-routing-service/internal/services"
)

type JobHandler struct {
	Svc *services.Service
}

// Jobs serves a single job: GET loads it with routes and stops, DELETE
// removes it and releases its orders back to pending.
func (h *JobHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		job, err := h.Svc.GetJob(r.Context(), id)
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "job not found")
			return
		}
		if err != nil {
			log.Printf("get job failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, r, http.StatusOK, jobResponse(job))

	case http.MethodDelete:
		err := h.Svc.DeleteJob(r.Context(), id)
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "job not found")
			return
		}
		if err != nil {
			log.Printf("delete job failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, DELETE")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// Complete closes a planned job and marks its orders delivered.
func (h *JobHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := jobID(w, r)
	if !ok {
		return
	}

	err := h.Svc.CompleteJob(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func jobID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "id must be a job id")
		return 0, false
	}
	return id, true
}
