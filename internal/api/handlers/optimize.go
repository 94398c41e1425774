package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"fleet-routing-service/internal/api/dto"
	"fleet-routing-service/internal/services"
)

type OptimizeHandler struct {
	Svc *services.Service
}

// Optimize runs one planning job over the requested vehicles and
// orders and returns the persisted routes.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if len(req.Vehicles) == 0 {
		writeError(w, r, http.StatusBadRequest, "vehicles are required")
		return
	}
	if len(req.OrderIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "order_ids are required")
		return
	}

	assignments := make([]services.VehicleAssignment, 0, len(req.Vehicles))
	for _, v := range req.Vehicles {
		if v.PredefinedRouteID != nil {
			assignments = append(assignments, services.FixedVehicle(v.VehicleID, *v.PredefinedRouteID))
			continue
		}
		assignments = append(assignments, services.FreeVehicle(v.VehicleID))
	}

	job, err := h.Svc.Optimize(r.Context(), services.OptimizeRequest{
		Name:           req.Name,
		Day:            req.Day,
		Vehicles:       assignments,
		OrderIDs:       req.OrderIDs,
		UseTimeWindows: req.UseTimeWindows,
	})

	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, r, http.StatusBadRequest, verr.Error())
		return
	case services.IsInfeasible(err):
		writeError(w, r, http.StatusConflict, "no feasible plan for the requested orders and vehicles")
		return
	case err != nil:
		log.Printf("optimize failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, jobResponse(job))
}
