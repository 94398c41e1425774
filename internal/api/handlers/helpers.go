package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"fleet-routing-service/internal/api/dto"
	"fleet-routing-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func jobResponse(job domain.Job) dto.JobResponse {
	res := dto.JobResponse{
		ID:        job.ID,
		Reference: job.Reference.String(),
		Name:      job.Name,
		Day:       job.Day,
		Status:    string(job.Status),
		Routes:    make([]dto.RouteResponse, 0, len(job.Routes)),
	}
	for _, route := range job.Routes {
		rr := dto.RouteResponse{
			VehicleID:       route.VehicleID,
			TotalDistanceKm: route.TotalDistanceKm,
			TotalTimeMin:    route.TotalTimeMin,
			Stops:           make([]dto.StopResponse, 0, len(route.Stops)),
		}
		for _, stop := range route.Stops {
			rr.Stops = append(rr.Stops, dto.StopResponse{
				LocationID: stop.LocationID,
				OrderID:    stop.OrderID,
				Sequence:   stop.Sequence,
				Arrival:    domain.MinutesToClock(stop.ArrivalMin),
				Departure:  domain.MinutesToClock(stop.DepartureMin),
			})
		}
		res.Routes = append(res.Routes, rr)
	}
	return res
}
