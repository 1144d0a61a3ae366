package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
)

// GormBatchRepository implements planning.BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GORM batch repository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// Create inserts a new batch row
func (r *GormBatchRepository) Create(ctx context.Context, batch *planning.OptimizationBatch) error {
	model, err := r.batchToModel(batch)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return shared.NewPersistenceError("create batch", err)
	}
	return nil
}

// Update persists the current state of an existing batch
func (r *GormBatchRepository) Update(ctx context.Context, batch *planning.OptimizationBatch) error {
	model, err := r.batchToModel(batch)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&OptimizationBatchModel{}).Where("id = ?", batch.ID).
		Select("*").Omit("id", "created_at").Updates(model)
	if result.Error != nil {
		return shared.NewPersistenceError("update batch", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("batch not found: %s", batch.ID)
	}
	return nil
}

// FindByID retrieves a batch by ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id string) (*planning.OptimizationBatch, error) {
	var model OptimizationBatchModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("batch not found: %s", id)
		}
		return nil, shared.NewPersistenceError("find batch", err)
	}

	return r.modelToBatch(&model)
}

// FindRecent retrieves the most recently created batches
func (r *GormBatchRepository) FindRecent(ctx context.Context, limit int) ([]*planning.OptimizationBatch, error) {
	var models []OptimizationBatchModel
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&models).Error
	if err != nil {
		return nil, shared.NewPersistenceError("list batches", err)
	}

	batches := make([]*planning.OptimizationBatch, 0, len(models))
	for i := range models {
		batch, convErr := r.modelToBatch(&models[i])
		if convErr != nil {
			return nil, convErr
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// batchToModel converts a domain batch to its database model
func (r *GormBatchRepository) batchToModel(batch *planning.OptimizationBatch) (*OptimizationBatchModel, error) {
	companies, err := json.Marshal(batch.ParticipatingCompanies)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal participating companies: %w", err)
	}

	return &OptimizationBatchModel{
		ID:                     batch.ID,
		BatchDate:              batch.BatchDate,
		Type:                   string(batch.Type),
		Status:                 string(batch.Status),
		TotalTrips:             batch.TotalTrips,
		VehiclesUsed:           batch.VehiclesUsed,
		KmSaved:                batch.KmSaved,
		FuelSavedLiters:        batch.FuelSavedLiters,
		ParticipatingCompanies: string(companies),
		SolverTimeSeconds:      batch.SolverTimeSeconds,
		SolverStatus:           batch.SolverStatus,
		ErrorMessage:           batch.ErrorMessage,
		CreatedAt:              batch.CreatedAt,
		CompletedAt:            batch.CompletedAt,
	}, nil
}

// modelToBatch converts a database model to the domain batch
func (r *GormBatchRepository) modelToBatch(model *OptimizationBatchModel) (*planning.OptimizationBatch, error) {
	var companies []string
	if model.ParticipatingCompanies != "" {
		if err := json.Unmarshal([]byte(model.ParticipatingCompanies), &companies); err != nil {
			return nil, fmt.Errorf("failed to unmarshal participating companies for batch %s: %w", model.ID, err)
		}
	}

	return &planning.OptimizationBatch{
		ID:                     model.ID,
		BatchDate:              model.BatchDate.UTC(),
		Type:                   planning.BatchType(model.Type),
		Status:                 planning.BatchStatus(model.Status),
		TotalTrips:             model.TotalTrips,
		VehiclesUsed:           model.VehiclesUsed,
		KmSaved:                model.KmSaved,
		FuelSavedLiters:        model.FuelSavedLiters,
		ParticipatingCompanies: companies,
		SolverTimeSeconds:      model.SolverTimeSeconds,
		SolverStatus:           model.SolverStatus,
		ErrorMessage:           model.ErrorMessage,
		CreatedAt:              model.CreatedAt.UTC(),
		CompletedAt:            model.CompletedAt,
	}, nil
}
