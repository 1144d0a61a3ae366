package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbendaoud/fretplan-go/internal/adapters/persistence"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/test/helpers"
)

func TestCompanyResultRepository_SaveAllAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormCompanyResultRepository(db)

	results := []*planning.CompanyResult{
		{
			BatchID:          "batch-001",
			CompanyID:        "carrier-lyon",
			TripsContributed: 5,
			TripsAssigned:    5,
			VehiclesUsed:     2,
			KmSaved:          120.5,
			FuelSavedLiters:  36.15,
			CO2SavedKg:       96.88,
			CostSaved:        54.22,
			RawKmDelta:       120.5,
		},
		{
			BatchID:           "batch-001",
			CompanyID:         "carrier-paris",
			TripsContributed:  3,
			TripsAssigned:     2,
			VehiclesUsed:      1,
			VehiclesSharedOut: 1,
			KmSaved:           0,
			RawKmDelta:        -14.2,
		},
	}

	// Act
	err := repo.SaveAll(context.Background(), results)

	// Assert
	require.NoError(t, err)

	found, err := repo.FindByBatchID(context.Background(), "batch-001")
	require.NoError(t, err)
	require.Len(t, found, 2)

	// Ordered by company_id
	assert.Equal(t, "carrier-lyon", found[0].CompanyID)
	assert.Equal(t, 5, found[0].TripsAssigned)
	assert.InDelta(t, 120.5, found[0].KmSaved, 0.001)

	assert.Equal(t, "carrier-paris", found[1].CompanyID)
	assert.Equal(t, 1, found[1].VehiclesSharedOut)
	assert.InDelta(t, -14.2, found[1].RawKmDelta, 0.001)
}

func TestCompanyResultRepository_RerunReplacesRows(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormCompanyResultRepository(db)

	first := []*planning.CompanyResult{
		{BatchID: "batch-001", CompanyID: "carrier-lyon", TripsAssigned: 3, KmSaved: 50},
	}
	require.NoError(t, repo.SaveAll(context.Background(), first))

	rerun := []*planning.CompanyResult{
		{BatchID: "batch-001", CompanyID: "carrier-lyon", TripsAssigned: 5, KmSaved: 87.3},
	}

	// Act
	err := repo.SaveAll(context.Background(), rerun)

	// Assert
	require.NoError(t, err)

	found, err := repo.FindByBatchID(context.Background(), "batch-001")
	require.NoError(t, err)
	require.Len(t, found, 1, "rerun must replace the row, not duplicate it")
	assert.Equal(t, 5, found[0].TripsAssigned)
	assert.InDelta(t, 87.3, found[0].KmSaved, 0.001)
}

func TestCompanyResultRepository_EmptySave(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormCompanyResultRepository(db)

	// Act
	err := repo.SaveAll(context.Background(), nil)

	// Assert
	assert.NoError(t, err)
}
