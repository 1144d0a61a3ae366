package helpers

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/mbendaoud/fretplan-go/internal/adapters/persistence"
	"github.com/mbendaoud/fretplan-go/internal/domain/company"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
)

// A handful of real French locations used across the fixtures
var (
	LyonDepot      = shared.GeoPoint{Lat: 45.7640, Lng: 4.8357}
	ParisDepot     = shared.GeoPoint{Lat: 48.8566, Lng: 2.3522}
	MarseilleDepot = shared.GeoPoint{Lat: 43.2965, Lng: 5.3698}
	GrenoblePoint  = shared.GeoPoint{Lat: 45.1885, Lng: 5.7245}
	DijonPoint     = shared.GeoPoint{Lat: 47.3220, Lng: 5.0415}
)

// CreateTestCompany builds a carrier with a depot
func CreateTestCompany(id, name string, depot shared.GeoPoint) *company.Company {
	d := depot
	return &company.Company{ID: id, Name: name, Depot: &d}
}

// CreateTestVehicle builds an available vehicle with sensible defaults
func CreateTestVehicle(id, companyID string, category vehicle.Category) *vehicle.Vehicle {
	return &vehicle.Vehicle{
		ID:                   id,
		CompanyID:            companyID,
		Category:             category,
		CapacityTons:         19,
		CostPerKm:            1.2,
		FuelConsumptionL100K: 30,
		Status:               vehicle.StatusAvailable,
	}
}

// CreateTestTrip builds a planned, pending trip between two points.
// departure is combined with the HH:MM given as hour and minute on date.
func CreateTestTrip(id, companyID string, origin, destination shared.GeoPoint, date time.Time, hour, minute int, cargo trip.CargoCategory) *trip.Trip {
	o, d := origin, destination
	day := date.UTC().Truncate(24 * time.Hour)
	departure := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)

	return &trip.Trip{
		ID:                 id,
		CompanyID:          companyID,
		Origin:             &o,
		Destination:        &d,
		DepartureTime:      departure,
		PlannedArrivalTime: departure.Add(3 * time.Hour),
		CargoCategory:      cargo,
		WeightKg:           5000,
		Status:             trip.StatusPlanned,
		OptimizationStatus: trip.OptimizationPending,
	}
}

// SeedCompanies persists companies, failing the test on error
func SeedCompanies(t *testing.T, db *gorm.DB, companies ...*company.Company) {
	t.Helper()
	repo := persistence.NewGormCompanyRepository(db)
	for _, c := range companies {
		if err := repo.Save(context.Background(), c); err != nil {
			t.Fatalf("failed to seed company %s: %v", c.ID, err)
		}
	}
}

// SeedVehicles persists vehicles, failing the test on error
func SeedVehicles(t *testing.T, db *gorm.DB, vehicles ...*vehicle.Vehicle) {
	t.Helper()
	repo := persistence.NewGormVehicleRepository(db)
	for _, v := range vehicles {
		if err := repo.Save(context.Background(), v); err != nil {
			t.Fatalf("failed to seed vehicle %s: %v", v.ID, err)
		}
	}
}

// SeedTrips persists trips, failing the test on error
func SeedTrips(t *testing.T, db *gorm.DB, trips ...*trip.Trip) {
	t.Helper()
	repo := persistence.NewGormTripRepository(db)
	for _, tr := range trips {
		if err := repo.Save(context.Background(), tr); err != nil {
			t.Fatalf("failed to seed trip %s: %v", tr.ID, err)
		}
	}
}
