package planning

import "fmt"

// Unassigned-trip reasons surfaced in the batch report
const (
	ReasonMissingCoordinates = "missing_coordinates"
	ReasonExceedsCapacity    = "exceeds_vehicle_capacity"
	ReasonNotAssigned        = "not_assigned"
)

// NoVehiclesForCategory builds the reason string for a category nobody operates
func NoVehiclesForCategory(category string) string {
	return fmt.Sprintf("no_vehicles_for_category:%s", category)
}

// BatchReport is the CLI/API-agnostic JSON summary of a finished batch
type BatchReport struct {
	BatchID                string                        `json:"batch_id"`
	Date                   string                        `json:"date"`
	Type                   BatchType                     `json:"type"`
	TripsOptimized         int                           `json:"trips_optimized"`
	VehiclesUsed           int                           `json:"vehicles_used"`
	ParticipatingCompanies []string                      `json:"participating_companies"`
	Totals                 ReportTotals                  `json:"totals"`
	Assignments            []AssignmentEntry             `json:"assignments"`
	Unassigned             []UnassignedEntry             `json:"unassigned"`
	CompanyResults         map[string]CompanyResult      `json:"company_results"`
	Valhalla               map[string]RoutingDiagnostics `json:"valhalla"`
	Error                  string                        `json:"error,omitempty"`
}

// ReportTotals aggregates the savings over all participating companies
type ReportTotals struct {
	KmSaved         float64 `json:"km_saved"`
	FuelSavedLiters float64 `json:"fuel_saved_L"`
	CO2SavedKg      float64 `json:"co2_saved_kg"`
	CostSaved       float64 `json:"cost_saved"`
}

// AssignmentEntry is one trip→vehicle binding in the day plan
type AssignmentEntry struct {
	TripID            string `json:"trip_id"`
	AssignedVehicleID string `json:"assigned_vehicle_id"`
	OriginalCompanyID string `json:"original_company_id"`
	AssignedCompanyID string `json:"assigned_company_id"`
	SequenceOrder     int    `json:"sequence_order"`
	IsLastInChain     bool   `json:"is_last_in_chain"`
	StartTimeISO      string `json:"start_time_iso"`
}

// UnassignedEntry records a trip left out of the plan and why
type UnassignedEntry struct {
	TripID string `json:"trip_id"`
	Reason string `json:"reason"`
}

// RoutingDiagnostics reports the matrix health for one vehicle-category group
type RoutingDiagnostics struct {
	MatrixOK     bool `json:"matrix_ok"`
	FallbackUsed bool `json:"fallback_used"`
	Locations    int  `json:"locations"`
	// SolverFallback is set when the group degraded to round-robin
	SolverFallback bool `json:"solver_fallback,omitempty"`
}
