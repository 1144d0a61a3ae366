package company

import (
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
)

// Company represents a participating carrier.
// The depot is the default return point for the carrier's vehicles.
type Company struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Depot *shared.GeoPoint `json:"depot,omitempty"`
}

// NewCompany creates a company with validation
func NewCompany(id, name string, depot *shared.GeoPoint) (*Company, error) {
	if id == "" {
		return nil, shared.NewValidationError("id", "cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "cannot be empty")
	}
	return &Company{ID: id, Name: name, Depot: depot}, nil
}
