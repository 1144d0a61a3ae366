package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
)

// GormVehicleRepository implements vehicle.Repository using GORM
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GORM vehicle repository
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// Save inserts or replaces a vehicle
func (r *GormVehicleRepository) Save(ctx context.Context, v *vehicle.Vehicle) error {
	model := r.vehicleToModel(v)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save vehicle %s: %w", v.ID, err)
	}
	return nil
}

// FindAvailable retrieves vehicles with status available, optionally
// narrowed to a single company's fleet
func (r *GormVehicleRepository) FindAvailable(ctx context.Context, companyID *string) ([]*vehicle.Vehicle, error) {
	query := r.db.WithContext(ctx).Where("status = ?", string(vehicle.StatusAvailable))
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}

	var models []VehicleModel
	if err := query.Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list available vehicles: %w", err)
	}

	vehicles := make([]*vehicle.Vehicle, 0, len(models))
	for i := range models {
		vehicles = append(vehicles, r.modelToVehicle(&models[i]))
	}
	return vehicles, nil
}

// FindByIDs resolves vehicles by ID, keyed by ID
func (r *GormVehicleRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*vehicle.Vehicle, error) {
	result := make(map[string]*vehicle.Vehicle, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var models []VehicleModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find vehicles: %w", err)
	}

	for i := range models {
		v := r.modelToVehicle(&models[i])
		result[v.ID] = v
	}
	return result, nil
}

// vehicleToModel converts a domain vehicle to its database model
func (r *GormVehicleRepository) vehicleToModel(v *vehicle.Vehicle) *VehicleModel {
	model := &VehicleModel{
		ID:                   v.ID,
		CompanyID:            v.CompanyID,
		Category:             string(v.Category),
		CapacityTons:         v.CapacityTons,
		CapacityM3:           v.CapacityM3,
		CostPerKm:            v.CostPerKm,
		FuelConsumptionL100K: v.FuelConsumptionL100K,
		Status:               string(v.Status),
	}

	if v.Depot != nil {
		model.DepotLat = &v.Depot.Lat
		model.DepotLng = &v.Depot.Lng
	}

	return model
}

// modelToVehicle converts a database model to the domain vehicle
func (r *GormVehicleRepository) modelToVehicle(model *VehicleModel) *vehicle.Vehicle {
	v := &vehicle.Vehicle{
		ID:                   model.ID,
		CompanyID:            model.CompanyID,
		Category:             vehicle.Category(model.Category),
		CapacityTons:         model.CapacityTons,
		CapacityM3:           model.CapacityM3,
		CostPerKm:            model.CostPerKm,
		FuelConsumptionL100K: model.FuelConsumptionL100K,
		Status:               vehicle.Status(model.Status),
	}

	if model.DepotLat != nil && model.DepotLng != nil {
		v.Depot = &shared.GeoPoint{Lat: *model.DepotLat, Lng: *model.DepotLng}
	}

	return v
}
