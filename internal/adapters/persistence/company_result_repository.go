package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
)

// GormCompanyResultRepository implements planning.CompanyResultRepository using GORM
type GormCompanyResultRepository struct {
	db *gorm.DB
}

// NewGormCompanyResultRepository creates a new GORM company result repository
func NewGormCompanyResultRepository(db *gorm.DB) *GormCompanyResultRepository {
	return &GormCompanyResultRepository{db: db}
}

// SaveAll upserts the per-company results of one batch.
// Rerunning a batch replaces its rows instead of failing on the composite key.
func (r *GormCompanyResultRepository) SaveAll(ctx context.Context, results []*planning.CompanyResult) error {
	if len(results) == 0 {
		return nil
	}

	models := make([]CompanyResultModel, 0, len(results))
	for _, result := range results {
		models = append(models, CompanyResultModel{
			BatchID:           result.BatchID,
			CompanyID:         result.CompanyID,
			TripsContributed:  result.TripsContributed,
			TripsAssigned:     result.TripsAssigned,
			VehiclesUsed:      result.VehiclesUsed,
			VehiclesBorrowed:  result.VehiclesBorrowed,
			VehiclesSharedOut: result.VehiclesSharedOut,
			KmSaved:           result.KmSaved,
			FuelSavedLiters:   result.FuelSavedLiters,
			CO2SavedKg:        result.CO2SavedKg,
			CostSaved:         result.CostSaved,
			RawKmDelta:        result.RawKmDelta,
		})
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "batch_id"}, {Name: "company_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"trips_contributed", "trips_assigned",
			"vehicles_used", "vehicles_borrowed", "vehicles_shared_out",
			"km_saved", "fuel_saved_liters", "co2_saved_kg", "cost_saved", "raw_km_delta",
		}),
	}).Create(&models).Error
	if err != nil {
		return fmt.Errorf("failed to save company results: %w", err)
	}

	return nil
}

// FindByBatchID retrieves the per-company results of a batch
func (r *GormCompanyResultRepository) FindByBatchID(ctx context.Context, batchID string) ([]*planning.CompanyResult, error) {
	var models []CompanyResultModel
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("company_id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list company results: %w", err)
	}

	results := make([]*planning.CompanyResult, 0, len(models))
	for i := range models {
		model := &models[i]
		results = append(results, &planning.CompanyResult{
			BatchID:           model.BatchID,
			CompanyID:         model.CompanyID,
			TripsContributed:  model.TripsContributed,
			TripsAssigned:     model.TripsAssigned,
			VehiclesUsed:      model.VehiclesUsed,
			VehiclesBorrowed:  model.VehiclesBorrowed,
			VehiclesSharedOut: model.VehiclesSharedOut,
			KmSaved:           model.KmSaved,
			FuelSavedLiters:   model.FuelSavedLiters,
			CO2SavedKg:        model.CO2SavedKg,
			CostSaved:         model.CostSaved,
			RawKmDelta:        model.RawKmDelta,
		})
	}
	return results, nil
}
