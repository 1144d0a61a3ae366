package trip

import (
	"strings"
	"time"

	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
)

// Status is the operational lifecycle state of a trip
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// OptimizationStatus tracks a trip through the nightly batch
type OptimizationStatus string

const (
	OptimizationPending   OptimizationStatus = "pending"
	OptimizationAssigned  OptimizationStatus = "assigned"
	OptimizationCompleted OptimizationStatus = "completed"
)

// CargoCategory is the cargo classification code carried by a trip.
// The three-character prefix drives the required vehicle category mapping.
type CargoCategory string

const (
	CargoFreshProduce    CargoCategory = "a01_produits_frais"
	CargoFrozen          CargoCategory = "a02_surgeles"
	CargoFruitsVeg       CargoCategory = "a03_fruits_legumes"
	CargoFoodLiquids     CargoCategory = "a04_liquides_alimentaires"
	CargoBulkMaterials   CargoCategory = "b01_materiaux_vrac"
	CargoLongMaterials   CargoCategory = "b02_materiaux_longs"
	CargoFreshConcrete   CargoCategory = "b03_beton_frais"
	CargoPalletizedGoods CargoCategory = "i01_colis_palettes"
	CargoAppliances      CargoCategory = "i02_electromenager"
	CargoChemicalLiquids CargoCategory = "c01_liquides_chimiques"
	CargoIndustrialGas   CargoCategory = "c02_gaz_industriels"
)

// Prefix returns the lowercased three-character mapping prefix ("a01", "b02", ...)
func (c CargoCategory) Prefix() string {
	s := strings.ToLower(string(c))
	if len(s) < 3 {
		return s
	}
	return s[:3]
}

// Trip represents one freight movement contributed to a batch.
// References to company and vehicle are opaque IDs resolved through repositories.
type Trip struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`

	Origin          *shared.GeoPoint `json:"origin,omitempty"`
	OriginName      string           `json:"origin_name,omitempty"`
	Destination     *shared.GeoPoint `json:"destination,omitempty"`
	DestinationName string           `json:"destination_name,omitempty"`

	DepartureTime      time.Time `json:"departure_time"`
	PlannedArrivalTime time.Time `json:"planned_arrival_time"`

	CargoCategory CargoCategory `json:"cargo_category"`
	MaterialType  string        `json:"material_type,omitempty"`
	WeightKg      float64       `json:"weight_kg"`
	VolumeM3      *float64      `json:"volume_m3,omitempty"`

	// Explicit requirement wins over the cargo-category derivation
	RequiredVehicleCategory vehicle.Category `json:"required_vehicle_category,omitempty"`

	// Precomputed routing hints; backfilled from the provider when absent
	RouteDistanceKm  *float64 `json:"route_distance_km,omitempty"`
	RouteDurationMin *float64 `json:"route_duration_min,omitempty"`
	ReturnDistanceKm *float64 `json:"return_distance_km,omitempty"`

	Status Status `json:"status"`

	// Set by the plan applier at batch completion
	OptimizationBatchID *string            `json:"optimization_batch_id,omitempty"`
	AssignedVehicleID   *string            `json:"assigned_vehicle_id,omitempty"`
	SequenceOrder       *int               `json:"sequence_order,omitempty"`
	IsLastInChain       bool               `json:"is_last_in_chain"`
	OptimizationStatus  OptimizationStatus `json:"optimization_status"`
	EstimatedArrival    *time.Time         `json:"estimated_arrival,omitempty"`
}

// NewTrip creates a planned trip with the minimal required attributes
func NewTrip(id, companyID string, origin, destination *shared.GeoPoint, departure, plannedArrival time.Time, cargo CargoCategory, weightKg float64) (*Trip, error) {
	if id == "" {
		return nil, shared.NewValidationError("id", "cannot be empty")
	}
	if companyID == "" {
		return nil, shared.NewValidationError("company_id", "cannot be empty")
	}
	if weightKg < 0 {
		return nil, shared.NewValidationError("weight_kg", "cannot be negative")
	}

	return &Trip{
		ID:                 id,
		CompanyID:          companyID,
		Origin:             origin,
		Destination:        destination,
		DepartureTime:      departure,
		PlannedArrivalTime: plannedArrival,
		CargoCategory:      cargo,
		WeightKg:           weightKg,
		Status:             StatusPlanned,
		OptimizationStatus: OptimizationPending,
	}, nil
}

// HasCoordinates reports whether both endpoints carry usable coordinates
func (t *Trip) HasCoordinates() bool {
	return t.Origin != nil && t.Destination != nil
}

// DurationMinutes returns the precomputed route duration, or def when unset
func (t *Trip) DurationMinutes(def float64) float64 {
	if t.RouteDurationMin != nil && *t.RouteDurationMin > 0 {
		return *t.RouteDurationMin
	}
	return def
}

// IsAssigned reports whether the plan applier has bound this trip to a vehicle
func (t *Trip) IsAssigned() bool {
	return t.AssignedVehicleID != nil && *t.AssignedVehicleID != ""
}
