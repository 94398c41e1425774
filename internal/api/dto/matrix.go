package dto

type RefreshResponse struct {
	Pending         int     `json:"pending"`
	Processed       int     `json:"processed"`
	PairsComputed   int     `json:"pairs_computed"`
	PairErrors      int     `json:"pair_errors"`
	FailedLocations []int64 `json:"failed_locations,omitempty"`
}

type DistanceResponse struct {
	From       int64   `json:"from"`
	To         int64   `json:"to"`
	DistanceKm float64 `json:"distance_km"`
	TimeMin    float64 `json:"time_min"`
}
