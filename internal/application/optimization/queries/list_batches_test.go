package queries_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mbendaoud/fretplan-go/internal/adapters/persistence"
	"github.com/mbendaoud/fretplan-go/internal/application/optimization/queries"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/test/helpers"
)

func seedBatchSeries(t *testing.T, db *gorm.DB, count int) {
	t.Helper()

	repo := persistence.NewGormBatchRepository(db)
	base := time.Date(2025, 3, 14, 1, 0, 0, 0, time.UTC)
	for i := 1; i <= count; i++ {
		batch := planning.NewBatch(fmt.Sprintf("batch-%02d", i), base.Truncate(24*time.Hour), planning.TypeCrossCompany, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.Create(context.Background(), batch))
	}
}

func TestListBatchesHandler_NewestFirstWithDefaultLimit(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	seedBatchSeries(t, db, 12)
	handler := queries.NewListBatchesHandler(persistence.NewGormBatchRepository(db))

	// Act
	response, err := handler.Handle(context.Background(), &queries.ListBatchesQuery{})

	// Assert
	require.NoError(t, err)
	batches := response.(*queries.ListBatchesResponse).Batches
	require.Len(t, batches, 10)
	assert.Equal(t, "batch-12", batches[0].ID)
	assert.Equal(t, "batch-03", batches[9].ID)
}

func TestListBatchesHandler_ExplicitLimit(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	seedBatchSeries(t, db, 3)
	handler := queries.NewListBatchesHandler(persistence.NewGormBatchRepository(db))

	// Act
	response, err := handler.Handle(context.Background(), &queries.ListBatchesQuery{Limit: 2})

	// Assert
	require.NoError(t, err)
	batches := response.(*queries.ListBatchesResponse).Batches
	require.Len(t, batches, 2)
	assert.Equal(t, "batch-03", batches[0].ID)
	assert.Equal(t, "batch-02", batches[1].ID)
}

func TestListBatchesHandler_EmptyTable(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	handler := queries.NewListBatchesHandler(persistence.NewGormBatchRepository(db))

	// Act
	response, err := handler.Handle(context.Background(), &queries.ListBatchesQuery{})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, response.(*queries.ListBatchesResponse).Batches)
}
