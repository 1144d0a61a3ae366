package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mbendaoud/fretplan-go/internal/domain/company"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
)

// GormCompanyRepository implements company.Repository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GORM company repository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// Save inserts or replaces a company
func (r *GormCompanyRepository) Save(ctx context.Context, c *company.Company) error {
	model := &CompanyModel{
		ID:   c.ID,
		Name: c.Name,
	}
	if c.Depot != nil {
		model.DepotLat = &c.Depot.Lat
		model.DepotLng = &c.Depot.Lng
	}

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save company %s: %w", c.ID, err)
	}
	return nil
}

// FindByIDs resolves companies by ID, keyed by ID; unknown IDs are omitted
func (r *GormCompanyRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*company.Company, error) {
	result := make(map[string]*company.Company, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var models []CompanyModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find companies: %w", err)
	}

	for i := range models {
		model := &models[i]
		c := &company.Company{ID: model.ID, Name: model.Name}
		if model.DepotLat != nil && model.DepotLng != nil {
			c.Depot = &shared.GeoPoint{Lat: *model.DepotLat, Lng: *model.DepotLng}
		}
		result[c.ID] = c
	}
	return result, nil
}
