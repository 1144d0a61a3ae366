package vehicle

import (
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
)

// Category is the vehicle body type code required by a cargo class
type Category string

const (
	CategoryAG1 Category = "AG1" // refrigerated
	CategoryAG2 Category = "AG2" // chilled
	CategoryAG3 Category = "AG3" // isothermal
	CategoryAG4 Category = "AG4" // food tanker
	CategoryBT1 Category = "BT1" // dump truck
	CategoryBT3 Category = "BT3" // mixer
	CategoryBT4 Category = "BT4" // flatbed with rails
	CategoryIN2 Category = "IN2" // closed van
	CategoryIN6 Category = "IN6" // box with lift
	CategoryCH2 Category = "CH2" // chemical tanker
	CategoryCH4 Category = "CH4" // ADR certified
)

var categoryLabels = map[Category]string{
	CategoryAG1: "refrigerated",
	CategoryAG2: "chilled",
	CategoryAG3: "isothermal",
	CategoryAG4: "food tanker",
	CategoryBT1: "dump truck",
	CategoryBT3: "mixer",
	CategoryBT4: "flatbed rails",
	CategoryIN2: "closed van",
	CategoryIN6: "box with lift",
	CategoryCH2: "chem tanker",
	CategoryCH4: "ADR",
}

// Label returns the human-readable body type, or the raw code when unknown
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Status is the availability state of a vehicle
type Status string

const (
	StatusAvailable   Status = "available"
	StatusInMission   Status = "in_mission"
	StatusMaintenance Status = "maintenance"
	StatusInactive    Status = "inactive"
)

// Vehicle represents one truck in a carrier's fleet.
// Read-only within a batch; the optimizer never mutates vehicles.
type Vehicle struct {
	ID        string   `json:"id"`
	CompanyID string   `json:"company_id"`
	Category  Category `json:"category"`

	CapacityTons float64  `json:"capacity_tons"`
	CapacityM3   *float64 `json:"capacity_m3,omitempty"`

	// Depot may be nil; the company depot is the fallback
	Depot *shared.GeoPoint `json:"depot,omitempty"`

	CostPerKm            float64 `json:"cost_per_km"`
	FuelConsumptionL100K float64 `json:"fuel_consumption_l_100km"`

	Status Status `json:"status"`
}

// NewVehicle creates an available vehicle with validation
func NewVehicle(id, companyID string, category Category, capacityTons float64) (*Vehicle, error) {
	if id == "" {
		return nil, shared.NewValidationError("id", "cannot be empty")
	}
	if companyID == "" {
		return nil, shared.NewValidationError("company_id", "cannot be empty")
	}
	if capacityTons <= 0 {
		return nil, shared.NewValidationError("capacity_tons", "must be positive")
	}

	return &Vehicle{
		ID:           id,
		CompanyID:    companyID,
		Category:     category,
		CapacityTons: capacityTons,
		Status:       StatusAvailable,
	}, nil
}

// CapacityKg returns the weight capacity in kilograms
func (v *Vehicle) CapacityKg() float64 {
	return v.CapacityTons * 1000
}

// CanCarry reports whether a single shipment of the given weight and volume fits.
// Volume is only enforced when both sides are set.
func (v *Vehicle) CanCarry(weightKg float64, volumeM3 *float64) bool {
	if weightKg > v.CapacityKg() {
		return false
	}
	if volumeM3 != nil && v.CapacityM3 != nil && *volumeM3 > *v.CapacityM3 {
		return false
	}
	return true
}
