package services

import (
	"context"
	"fmt"

	"github.com/mbendaoud/fretplan-go/internal/application/common"
	"github.com/mbendaoud/fretplan-go/internal/domain/routing"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
)

// RouteBackfillService fills in trip routing hints the journal left empty:
// per-trip route distance and driving time. Trips without coordinates are
// skipped; the group builder reports those as unassignable.
type RouteBackfillService struct {
	provider routing.Provider
}

// NewRouteBackfillService creates a new route backfill service
func NewRouteBackfillService(provider routing.Provider) *RouteBackfillService {
	return &RouteBackfillService{provider: provider}
}

// Backfill resolves missing route data in place and returns how many trips
// needed a provider call. Fallback estimates are used as-is; the plan must
// come out even when the routing engine is down.
func (s *RouteBackfillService) Backfill(ctx context.Context, trips []*trip.Trip) (int, error) {
	logger := common.LoggerFromContext(ctx)

	resolved := 0
	for _, t := range trips {
		if !t.HasCoordinates() {
			continue
		}
		if t.RouteDistanceKm != nil && t.RouteDurationMin != nil {
			continue
		}

		departAt := t.DepartureTime
		route, err := s.provider.Route(ctx, *t.Origin, *t.Destination, &departAt)
		if err != nil {
			return resolved, fmt.Errorf("route backfill for trip %s: %w", t.ID, err)
		}

		if t.RouteDistanceKm == nil {
			km := route.DistanceKm
			t.RouteDistanceKm = &km
		}
		if t.RouteDurationMin == nil {
			minutes := route.DurationMin
			t.RouteDurationMin = &minutes
		}
		resolved++

		if route.FallbackUsed {
			logger.Log("WARN", fmt.Sprintf("Route for trip %s estimated by haversine", t.ID), map[string]interface{}{
				"trip_id":     t.ID,
				"distance_km": route.DistanceKm,
			})
		}
	}

	if resolved > 0 {
		logger.Log("INFO", fmt.Sprintf("Backfilled routing data for %d trips", resolved), map[string]interface{}{
			"trips_resolved": resolved,
		})
	}
	return resolved, nil
}
