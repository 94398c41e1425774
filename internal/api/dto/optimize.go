package dto

// VehicleAssignment selects one vehicle for a run. A non-nil
// predefined_route_id locks the vehicle to that route's stop set.
type VehicleAssignment struct {
	VehicleID         int64  `json:"vehicle_id"`
	PredefinedRouteID *int64 `json:"predefined_route_id,omitempty"`
}

type OptimizeRequest struct {
	Name           string              `json:"name"`
	Day            string              `json:"day"`
	Vehicles       []VehicleAssignment `json:"vehicles"`
	OrderIDs       []int64             `json:"order_ids"`
	UseTimeWindows bool                `json:"use_time_windows"`
}

type StopResponse struct {
	LocationID int64  `json:"location_id"`
	OrderID    *int64 `json:"order_id,omitempty"`
	Sequence   int    `json:"sequence"`
	Arrival    string `json:"arrival"`
	Departure  string `json:"departure"`
}

type RouteResponse struct {
	VehicleID       int64          `json:"vehicle_id"`
	TotalDistanceKm float64        `json:"total_distance_km"`
	TotalTimeMin    float64        `json:"total_time_min"`
	Stops           []StopResponse `json:"stops"`
}

type JobResponse struct {
	ID        int64           `json:"id"`
	Reference string          `json:"reference"`
	Name      string          `json:"name,omitempty"`
	Day       string          `json:"day,omitempty"`
	Status    string          `json:"status"`
	Routes    []RouteResponse `json:"routes"`
}
