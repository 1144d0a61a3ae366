package persistence

import (
	"time"
)

// CompanyModel represents the companies table
type CompanyModel struct {
	ID       string   `gorm:"column:id;primaryKey"`
	Name     string   `gorm:"column:name;not null"`
	DepotLat *float64 `gorm:"column:depot_lat"`
	DepotLng *float64 `gorm:"column:depot_lng"`

	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (CompanyModel) TableName() string {
	return "companies"
}

// VehicleModel represents the vehicles table
type VehicleModel struct {
	ID        string `gorm:"column:id;primaryKey"`
	CompanyID string `gorm:"column:company_id;index;not null"`
	Category  string `gorm:"column:category;index;not null"`

	CapacityTons float64  `gorm:"column:capacity_tons;not null"`
	CapacityM3   *float64 `gorm:"column:capacity_m3"`

	// Vehicle-level depot override; company depot applies when NULL
	DepotLat *float64 `gorm:"column:depot_lat"`
	DepotLng *float64 `gorm:"column:depot_lng"`

	CostPerKm            float64 `gorm:"column:cost_per_km"`
	FuelConsumptionL100K float64 `gorm:"column:fuel_consumption_l_100km"`

	Status string `gorm:"column:status;index;not null;default:'available'"`

	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (VehicleModel) TableName() string {
	return "vehicles"
}

// TripModel represents the trips table
type TripModel struct {
	ID        string `gorm:"column:id;primaryKey"`
	CompanyID string `gorm:"column:company_id;index;not null"`

	OriginLat       *float64 `gorm:"column:origin_lat"`
	OriginLng       *float64 `gorm:"column:origin_lng"`
	OriginName      string   `gorm:"column:origin_name"`
	DestinationLat  *float64 `gorm:"column:destination_lat"`
	DestinationLng  *float64 `gorm:"column:destination_lng"`
	DestinationName string   `gorm:"column:destination_name"`

	DepartureTime      time.Time `gorm:"column:departure_time;index;not null"`
	PlannedArrivalTime time.Time `gorm:"column:planned_arrival_time;not null"`

	CargoCategory           string   `gorm:"column:cargo_category;not null"`
	MaterialType            string   `gorm:"column:material_type"`
	WeightKg                float64  `gorm:"column:weight_kg;not null"`
	VolumeM3                *float64 `gorm:"column:volume_m3"`
	RequiredVehicleCategory string   `gorm:"column:required_vehicle_category"`

	RouteDistanceKm  *float64 `gorm:"column:route_distance_km"`
	RouteDurationMin *float64 `gorm:"column:route_duration_min"`
	ReturnDistanceKm *float64 `gorm:"column:return_distance_km"`

	Status string `gorm:"column:status;index;not null;default:'planned'"`

	OptimizationBatchID *string    `gorm:"column:optimization_batch_id;index"`
	AssignedVehicleID   *string    `gorm:"column:assigned_vehicle_id"`
	SequenceOrder       *int       `gorm:"column:sequence_order"`
	IsLastInChain       bool       `gorm:"column:is_last_in_chain;not null;default:false"`
	OptimizationStatus  string     `gorm:"column:optimization_status;index;not null;default:'pending'"`
	EstimatedArrival    *time.Time `gorm:"column:estimated_arrival"`

	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (TripModel) TableName() string {
	return "trips"
}

// OptimizationBatchModel represents the optimization_batches table
type OptimizationBatchModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	BatchDate time.Time `gorm:"column:batch_date;index;not null"`
	Type      string    `gorm:"column:type;not null"`
	Status    string    `gorm:"column:status;index;not null;default:'pending'"`

	TotalTrips             int     `gorm:"column:total_trips;default:0"`
	VehiclesUsed           int     `gorm:"column:vehicles_used;default:0"`
	KmSaved                float64 `gorm:"column:km_saved;default:0"`
	FuelSavedLiters        float64 `gorm:"column:fuel_saved_liters;default:0"`
	ParticipatingCompanies string  `gorm:"column:participating_companies;type:text"` // JSON array as text

	SolverTimeSeconds float64 `gorm:"column:solver_time_seconds;default:0"`
	SolverStatus      string  `gorm:"column:solver_status"`
	ErrorMessage      *string `gorm:"column:error_message;type:text"`

	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
}

func (OptimizationBatchModel) TableName() string {
	return "optimization_batches"
}

// CompanyResultModel represents the company_results table
// Primary key is composite: (batch_id, company_id)
type CompanyResultModel struct {
	BatchID   string `gorm:"column:batch_id;primaryKey"`
	CompanyID string `gorm:"column:company_id;primaryKey"`

	TripsContributed  int `gorm:"column:trips_contributed;default:0"`
	TripsAssigned     int `gorm:"column:trips_assigned;default:0"`
	VehiclesUsed      int `gorm:"column:vehicles_used;default:0"`
	VehiclesBorrowed  int `gorm:"column:vehicles_borrowed;default:0"`
	VehiclesSharedOut int `gorm:"column:vehicles_shared_out;default:0"`

	KmSaved         float64 `gorm:"column:km_saved;default:0"`
	FuelSavedLiters float64 `gorm:"column:fuel_saved_liters;default:0"`
	CO2SavedKg      float64 `gorm:"column:co2_saved_kg;default:0"`
	CostSaved       float64 `gorm:"column:cost_saved;default:0"`
	RawKmDelta      float64 `gorm:"column:raw_km_delta;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (CompanyResultModel) TableName() string {
	return "company_results"
}
