package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mbendaoud/fretplan-go/internal/application/common"
	"github.com/mbendaoud/fretplan-go/internal/domain/company"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
	"github.com/mbendaoud/fretplan-go/internal/domain/solver"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
)

// Group is one vehicle-category partition ready for the solver. The entity
// slices are parallel to the solver input's index arenas.
type Group struct {
	Category vehicle.Category
	Input    *solver.Input
	Trips    []*trip.Trip
	Vehicles []*vehicle.Vehicle
}

// GroupBuilder prepares the disjoint category groups of one batch: it filters
// unservable trips, resolves depots, converts timestamps to plan minutes and
// wires everything onto matrix indices.
type GroupBuilder struct {
	serviceTimeMin int
}

// NewGroupBuilder creates a group builder with the loading/unloading buffer
// applied between chained trips.
func NewGroupBuilder(serviceTimeMin int) *GroupBuilder {
	return &GroupBuilder{serviceTimeMin: serviceTimeMin}
}

// BuildArena registers every point the batch needs: company depots first,
// then vehicle depots and trip endpoints. Add is idempotent per coordinate,
// so callers can re-resolve indices later.
func (b *GroupBuilder) BuildArena(trips []*trip.Trip, vehicles []*vehicle.Vehicle, companies map[string]*company.Company) *PointArena {
	arena := NewPointArena()
	for _, id := range sortedCompanyIDs(companies) {
		if c := companies[id]; c.Depot != nil {
			arena.Add(*c.Depot)
		}
	}
	for _, v := range vehicles {
		if v.Depot != nil {
			arena.Add(*v.Depot)
		}
	}
	for _, t := range trips {
		if t.HasCoordinates() {
			arena.Add(*t.Origin)
			arena.Add(*t.Destination)
		}
	}
	return arena
}

// BuildGroups partitions the batch by required vehicle category. Trips that
// cannot enter any group are returned as unassigned entries with a reason.
func (b *GroupBuilder) BuildGroups(
	ctx context.Context,
	dayStart time.Time,
	trips []*trip.Trip,
	vehicles []*vehicle.Vehicle,
	companies map[string]*company.Company,
	arena *PointArena,
	matrix *solver.Matrix,
) ([]*Group, []planning.UnassignedEntry) {
	logger := common.LoggerFromContext(ctx)

	vehiclesByCategory := make(map[vehicle.Category][]*vehicle.Vehicle)
	for _, v := range vehicles {
		if b.vehicleDepot(v, companies) == nil {
			logger.Log("WARN", fmt.Sprintf("Vehicle %s has no resolvable depot, excluded", v.ID), map[string]interface{}{
				"vehicle_id": v.ID,
				"company_id": v.CompanyID,
			})
			continue
		}
		vehiclesByCategory[v.Category] = append(vehiclesByCategory[v.Category], v)
	}
	for _, vs := range vehiclesByCategory {
		sort.Slice(vs, func(i, j int) bool { return vs[i].ID < vs[j].ID })
	}

	var unassigned []planning.UnassignedEntry
	tripsByCategory := make(map[vehicle.Category][]*trip.Trip)
	for _, t := range trips {
		if !t.HasCoordinates() {
			unassigned = append(unassigned, planning.UnassignedEntry{TripID: t.ID, Reason: planning.ReasonMissingCoordinates})
			continue
		}

		category := planning.RequiredCategoryFor(t)
		candidates := vehiclesByCategory[category]
		if len(candidates) == 0 {
			unassigned = append(unassigned, planning.UnassignedEntry{TripID: t.ID, Reason: planning.NoVehiclesForCategory(string(category))})
			continue
		}
		if !anyCanCarry(candidates, t) {
			unassigned = append(unassigned, planning.UnassignedEntry{TripID: t.ID, Reason: planning.ReasonExceedsCapacity})
			continue
		}

		tripsByCategory[category] = append(tripsByCategory[category], t)
	}

	var groups []*Group
	for _, category := range sortedCategories(tripsByCategory) {
		groupTrips := tripsByCategory[category]
		sort.Slice(groupTrips, func(i, j int) bool { return groupTrips[i].ID < groupTrips[j].ID })
		groupVehicles := vehiclesByCategory[category]

		in := &solver.Input{
			Group:  string(category),
			Matrix: matrix,
		}
		for _, t := range groupTrips {
			in.Trips = append(in.Trips, b.solverTrip(t, dayStart, arena, matrix, companies))
		}
		for _, v := range groupVehicles {
			depot := b.vehicleDepot(v, companies)
			depotIdx, _ := arena.IndexOf(*depot)
			sv := solver.Vehicle{
				ID:         v.ID,
				CompanyID:  v.CompanyID,
				Depot:      depotIdx,
				CapacityKg: v.CapacityKg(),
			}
			if v.CapacityM3 != nil {
				sv.CapacityM3 = *v.CapacityM3
				sv.HasVolumeCap = true
			}
			in.Vehicles = append(in.Vehicles, sv)
		}

		groups = append(groups, &Group{
			Category: category,
			Input:    in,
			Trips:    groupTrips,
			Vehicles: groupVehicles,
		})
	}

	return groups, unassigned
}

// solverTrip converts a journal trip into the solver arena representation.
// All times become whole minutes since the batch day's UTC midnight.
func (b *GroupBuilder) solverTrip(t *trip.Trip, dayStart time.Time, arena *PointArena, matrix *solver.Matrix, companies map[string]*company.Company) solver.Trip {
	originIdx, _ := arena.IndexOf(*t.Origin)
	destIdx, _ := arena.IndexOf(*t.Destination)

	earliest := minutesSince(dayStart, t.DepartureTime)
	duration := int(math.Round(t.DurationMinutes(b.windowDuration(t))))
	if duration < 1 {
		duration = 1
	}
	latest := minutesSince(dayStart, t.PlannedArrivalTime) - duration
	if latest < earliest {
		latest = earliest
	}

	st := solver.Trip{
		ID:             t.ID,
		CompanyID:      t.CompanyID,
		Origin:         originIdx,
		Destination:    destIdx,
		EarliestMin:    earliest,
		LatestStartMin: latest,
		DurationMin:    duration,
		ServiceMin:     b.serviceTimeMin,
		WeightKg:       t.WeightKg,
	}
	if t.VolumeM3 != nil {
		st.VolumeM3 = *t.VolumeM3
		st.HasVolume = true
	}

	if t.ReturnDistanceKm != nil {
		st.ReturnEstimateKm = *t.ReturnDistanceKm
	} else if c, ok := companies[t.CompanyID]; ok && c.Depot != nil {
		if depotIdx, found := arena.IndexOf(*c.Depot); found {
			st.ReturnEstimateKm = matrix.DistKm[destIdx][depotIdx]
		}
	}
	return st
}

// windowDuration estimates driving time from the planned window when no route
// data survived backfill.
func (b *GroupBuilder) windowDuration(t *trip.Trip) float64 {
	delta := t.PlannedArrivalTime.Sub(t.DepartureTime).Minutes()
	if delta > 0 {
		return delta
	}
	return 1
}

func (b *GroupBuilder) vehicleDepot(v *vehicle.Vehicle, companies map[string]*company.Company) *shared.GeoPoint {
	if v.Depot != nil {
		return v.Depot
	}
	if c, ok := companies[v.CompanyID]; ok {
		return c.Depot
	}
	return nil
}

func anyCanCarry(vehicles []*vehicle.Vehicle, t *trip.Trip) bool {
	for _, v := range vehicles {
		if v.CanCarry(t.WeightKg, t.VolumeM3) {
			return true
		}
	}
	return false
}

func minutesSince(dayStart, t time.Time) int {
	return int(math.Round(t.Sub(dayStart).Minutes()))
}

func sortedCompanyIDs(companies map[string]*company.Company) []string {
	ids := make([]string, 0, len(companies))
	for id := range companies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedCategories(m map[vehicle.Category][]*trip.Trip) []vehicle.Category {
	out := make([]vehicle.Category, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
