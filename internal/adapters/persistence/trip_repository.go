package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
)

// GormTripRepository implements trip.Repository using GORM
type GormTripRepository struct {
	db *gorm.DB
}

// NewGormTripRepository creates a new GORM trip repository
func NewGormTripRepository(db *gorm.DB) *GormTripRepository {
	return &GormTripRepository{db: db}
}

// Save inserts or replaces a trip
func (r *GormTripRepository) Save(ctx context.Context, t *trip.Trip) error {
	model := r.tripToModel(t)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save trip %s: %w", t.ID, err)
	}
	return nil
}

// FindPlannedForDate retrieves trips departing on the given UTC calendar day
// that are planned and still pending optimization
func (r *GormTripRepository) FindPlannedForDate(ctx context.Context, date time.Time, companyID *string) ([]*trip.Trip, error) {
	dayStart := date.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	query := r.db.WithContext(ctx).
		Where("departure_time >= ? AND departure_time < ?", dayStart, dayEnd).
		Where("status = ?", string(trip.StatusPlanned)).
		Where("optimization_status = ?", string(trip.OptimizationPending))
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}

	var models []TripModel
	if err := query.Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list planned trips: %w", err)
	}

	trips := make([]*trip.Trip, 0, len(models))
	for i := range models {
		trips = append(trips, r.modelToTrip(&models[i]))
	}
	return trips, nil
}

// FindByBatchID retrieves the trips bound to an optimization batch
func (r *GormTripRepository) FindByBatchID(ctx context.Context, batchID string) ([]*trip.Trip, error) {
	var models []TripModel
	err := r.db.WithContext(ctx).
		Where("optimization_batch_id = ?", batchID).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list batch trips: %w", err)
	}

	trips := make([]*trip.Trip, 0, len(models))
	for i := range models {
		trips = append(trips, r.modelToTrip(&models[i]))
	}
	return trips, nil
}

// SaveAssignments persists the optimization and backfilled routing fields
// of the given trips in a single transaction
func (r *GormTripRepository) SaveAssignments(ctx context.Context, trips []*trip.Trip) error {
	if len(trips) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range trips {
			updates := map[string]interface{}{
				"optimization_batch_id": t.OptimizationBatchID,
				"assigned_vehicle_id":   t.AssignedVehicleID,
				"sequence_order":        t.SequenceOrder,
				"is_last_in_chain":      t.IsLastInChain,
				"optimization_status":   string(t.OptimizationStatus),
				"estimated_arrival":     t.EstimatedArrival,
				"route_distance_km":     t.RouteDistanceKm,
				"route_duration_min":    t.RouteDurationMin,
				"return_distance_km":    t.ReturnDistanceKm,
			}

			result := tx.Model(&TripModel{}).Where("id = ?", t.ID).Updates(updates)
			if result.Error != nil {
				return fmt.Errorf("failed to save assignment for trip %s: %w", t.ID, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("trip not found: %s", t.ID)
			}
		}
		return nil
	})
}

// tripToModel converts a domain trip to its database model
func (r *GormTripRepository) tripToModel(t *trip.Trip) *TripModel {
	model := &TripModel{
		ID:                      t.ID,
		CompanyID:               t.CompanyID,
		OriginName:              t.OriginName,
		DestinationName:         t.DestinationName,
		DepartureTime:           t.DepartureTime,
		PlannedArrivalTime:      t.PlannedArrivalTime,
		CargoCategory:           string(t.CargoCategory),
		MaterialType:            t.MaterialType,
		WeightKg:                t.WeightKg,
		VolumeM3:                t.VolumeM3,
		RequiredVehicleCategory: string(t.RequiredVehicleCategory),
		RouteDistanceKm:         t.RouteDistanceKm,
		RouteDurationMin:        t.RouteDurationMin,
		ReturnDistanceKm:        t.ReturnDistanceKm,
		Status:                  string(t.Status),
		OptimizationBatchID:     t.OptimizationBatchID,
		AssignedVehicleID:       t.AssignedVehicleID,
		SequenceOrder:           t.SequenceOrder,
		IsLastInChain:           t.IsLastInChain,
		OptimizationStatus:      string(t.OptimizationStatus),
		EstimatedArrival:        t.EstimatedArrival,
	}

	if t.Origin != nil {
		model.OriginLat = &t.Origin.Lat
		model.OriginLng = &t.Origin.Lng
	}
	if t.Destination != nil {
		model.DestinationLat = &t.Destination.Lat
		model.DestinationLng = &t.Destination.Lng
	}

	return model
}

// modelToTrip converts a database model to the domain trip
func (r *GormTripRepository) modelToTrip(model *TripModel) *trip.Trip {
	t := &trip.Trip{
		ID:                      model.ID,
		CompanyID:               model.CompanyID,
		OriginName:              model.OriginName,
		DestinationName:         model.DestinationName,
		DepartureTime:           model.DepartureTime.UTC(),
		PlannedArrivalTime:      model.PlannedArrivalTime.UTC(),
		CargoCategory:           trip.CargoCategory(model.CargoCategory),
		MaterialType:            model.MaterialType,
		WeightKg:                model.WeightKg,
		VolumeM3:                model.VolumeM3,
		RequiredVehicleCategory: vehicle.Category(model.RequiredVehicleCategory),
		RouteDistanceKm:         model.RouteDistanceKm,
		RouteDurationMin:        model.RouteDurationMin,
		ReturnDistanceKm:        model.ReturnDistanceKm,
		Status:                  trip.Status(model.Status),
		OptimizationBatchID:     model.OptimizationBatchID,
		AssignedVehicleID:       model.AssignedVehicleID,
		SequenceOrder:           model.SequenceOrder,
		IsLastInChain:           model.IsLastInChain,
		OptimizationStatus:      trip.OptimizationStatus(model.OptimizationStatus),
		EstimatedArrival:        model.EstimatedArrival,
	}

	if model.OriginLat != nil && model.OriginLng != nil {
		t.Origin = &shared.GeoPoint{Lat: *model.OriginLat, Lng: *model.OriginLng}
	}
	if model.DestinationLat != nil && model.DestinationLng != nil {
		t.Destination = &shared.GeoPoint{Lat: *model.DestinationLat, Lng: *model.DestinationLng}
	}

	return t
}
