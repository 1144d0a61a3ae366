package planning

import (
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
)

// categoryByPrefix maps the cargo-code prefix to the vehicle body type.
// Unknown prefixes fall back to the refrigerated fleet.
var categoryByPrefix = map[string]vehicle.Category{
	"a01": vehicle.CategoryAG1,
	"a02": vehicle.CategoryAG2,
	"a03": vehicle.CategoryAG3,
	"a04": vehicle.CategoryAG4,
	"b01": vehicle.CategoryBT1,
	"b02": vehicle.CategoryBT4,
	"b03": vehicle.CategoryBT3,
	"i01": vehicle.CategoryIN2,
	"i02": vehicle.CategoryIN6,
	"c01": vehicle.CategoryCH2,
	"c02": vehicle.CategoryCH4,
}

// RequiredCategory derives the vehicle category a cargo class demands
func RequiredCategory(cargo trip.CargoCategory) vehicle.Category {
	if category, ok := categoryByPrefix[cargo.Prefix()]; ok {
		return category
	}
	return vehicle.CategoryAG1
}

// RequiredCategoryFor resolves the category for a trip: the explicit
// requirement when present, otherwise the cargo-class derivation.
func RequiredCategoryFor(t *trip.Trip) vehicle.Category {
	if t.RequiredVehicleCategory != "" {
		return t.RequiredVehicleCategory
	}
	return RequiredCategory(t.CargoCategory)
}
