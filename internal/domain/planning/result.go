package planning

// CompanyResult holds the per-company savings attribution for one batch.
// Created exactly once per participating company at batch completion.
type CompanyResult struct {
	BatchID   string `json:"batch_id"`
	CompanyID string `json:"company_id"`

	TripsContributed  int `json:"trips_contributed"`
	TripsAssigned     int `json:"trips_assigned"`
	VehiclesUsed      int `json:"vehicles_used"`
	VehiclesBorrowed  int `json:"vehicles_borrowed"`
	VehiclesSharedOut int `json:"vehicles_shared_out"`

	KmSaved         float64 `json:"km_saved"`
	FuelSavedLiters float64 `json:"fuel_saved_L"`
	CO2SavedKg      float64 `json:"co2_saved_kg"`
	CostSaved       float64 `json:"cost_saved"`

	// RawKmDelta keeps the unclipped baseline minus optimized difference for
	// diagnostics; KmSaved is clipped at zero.
	RawKmDelta float64 `json:"raw_km_delta"`
}
