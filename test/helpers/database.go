package helpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/mbendaoud/fretplan-go/internal/infrastructure/database"
)

// NewTestDB opens an in-memory sqlite database with the full schema applied.
// The connection is closed automatically when the test finishes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	return db
}
