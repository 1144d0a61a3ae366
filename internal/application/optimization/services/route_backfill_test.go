package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbendaoud/fretplan-go/internal/application/optimization/services"
	"github.com/mbendaoud/fretplan-go/internal/domain/routing"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/test/helpers"
)

func TestRouteBackfill_FillsMissingRouteData(t *testing.T) {
	// Arrange
	provider := helpers.NewMockRoutingProvider()
	provider.SetCustomRoute(helpers.LyonDepot, helpers.ParisDepot, &routing.RouteResult{
		DistanceKm: 465.3, DurationMin: 312, OK: true,
	})
	svc := services.NewRouteBackfillService(provider)

	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	bare := helpers.CreateTestTrip("trip-bare", "carrier-lyon", helpers.LyonDepot, helpers.ParisDepot, date, 8, 0, trip.CargoPalletizedGoods)

	// Act
	resolved, err := svc.Backfill(context.Background(), []*trip.Trip{bare})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)
	require.NotNil(t, bare.RouteDistanceKm)
	assert.InDelta(t, 465.3, *bare.RouteDistanceKm, 0.001)
	require.NotNil(t, bare.RouteDurationMin)
	assert.InDelta(t, 312.0, *bare.RouteDurationMin, 0.001)
}

func TestRouteBackfill_LeavesCompleteTripsAlone(t *testing.T) {
	// Arrange
	provider := helpers.NewMockRoutingProvider()
	svc := services.NewRouteBackfillService(provider)

	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	done := helpers.CreateTestTrip("trip-done", "carrier-lyon", helpers.LyonDepot, helpers.ParisDepot, date, 8, 0, trip.CargoPalletizedGoods)
	km, minutes := 450.0, 300.0
	done.RouteDistanceKm = &km
	done.RouteDurationMin = &minutes

	// Act
	resolved, err := svc.Backfill(context.Background(), []*trip.Trip{done})

	// Assert
	require.NoError(t, err)
	assert.Zero(t, resolved)
	assert.Zero(t, provider.RouteCalls(), "complete trips must not hit the provider")
	assert.InDelta(t, 450.0, *done.RouteDistanceKm, 0.001)
}

func TestRouteBackfill_SkipsTripsWithoutCoordinates(t *testing.T) {
	// Arrange
	provider := helpers.NewMockRoutingProvider()
	svc := services.NewRouteBackfillService(provider)

	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	blind := helpers.CreateTestTrip("trip-blind", "carrier-lyon", helpers.LyonDepot, helpers.ParisDepot, date, 8, 0, trip.CargoPalletizedGoods)
	blind.Destination = nil

	// Act
	resolved, err := svc.Backfill(context.Background(), []*trip.Trip{blind})

	// Assert
	require.NoError(t, err)
	assert.Zero(t, resolved)
	assert.Zero(t, provider.RouteCalls())
	assert.Nil(t, blind.RouteDistanceKm)
}

func TestRouteBackfill_PartialDataCompleted(t *testing.T) {
	// Arrange
	provider := helpers.NewMockRoutingProvider()
	svc := services.NewRouteBackfillService(provider)

	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	partial := helpers.CreateTestTrip("trip-partial", "carrier-lyon", helpers.LyonDepot, helpers.GrenoblePoint, date, 8, 0, trip.CargoPalletizedGoods)
	km := 110.0
	partial.RouteDistanceKm = &km

	// Act
	resolved, err := svc.Backfill(context.Background(), []*trip.Trip{partial})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)
	assert.InDelta(t, 110.0, *partial.RouteDistanceKm, 0.001, "journal distance is kept")
	require.NotNil(t, partial.RouteDurationMin, "missing duration is backfilled")
}

func TestRouteBackfill_ProviderError(t *testing.T) {
	// Arrange
	provider := helpers.NewMockRoutingProvider()
	provider.SetRouteError(errors.New("context canceled"))
	svc := services.NewRouteBackfillService(provider)

	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	bare := helpers.CreateTestTrip("trip-bare", "carrier-lyon", helpers.LyonDepot, helpers.ParisDepot, date, 8, 0, trip.CargoPalletizedGoods)

	// Act
	_, err := svc.Backfill(context.Background(), []*trip.Trip{bare})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "route backfill for trip trip-bare")
}
