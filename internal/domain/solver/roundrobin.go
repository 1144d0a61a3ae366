package solver

import "sort"

// RoundRobin spreads trips across the group's vehicles when the search could
// not produce a plan: trip k of the canonical order goes to vehicle k mod |V|,
// stepping forward cyclically past vehicles whose capacity the trip exceeds.
// Start times propagate forward and may slip past the planned window; the
// degraded plan still keeps sequences dense and one last trip per vehicle.
func RoundRobin(in *Input) *Solution {
	sol := &Solution{Fallback: true, Status: StatusFallback}
	if len(in.Trips) == 0 {
		sol.Status = StatusEmpty
		sol.Fallback = false
		return sol
	}
	if len(in.Vehicles) == 0 {
		sol.Unassigned = in.tripOrder()
		return sol
	}

	order := in.tripOrder()
	n := len(in.Vehicles)
	perVehicle := make([][]int, n)
	for k, t := range order {
		tr := &in.Trips[t]
		placed := false
		for off := 0; off < n; off++ {
			v := (k + off) % n
			if in.Vehicles[v].CanCarry(tr.WeightKg, tr.VolumeM3, tr.HasVolume) {
				perVehicle[v] = append(perVehicle[v], t)
				placed = true
				break
			}
		}
		if !placed {
			sol.Unassigned = append(sol.Unassigned, t)
		}
	}

	for v, trips := range perVehicle {
		if len(trips) == 0 {
			continue
		}
		sol.VehiclesUsed++
		ready, prev := 0, -1
		for i, t := range trips {
			tr := &in.Trips[t]
			start := tr.EarliestMin
			if prev >= 0 {
				travel := in.Matrix.TravelMin[in.Trips[prev].Destination][tr.Origin]
				if ready+travel > start {
					start = ready + travel
				}
			}
			sol.Assignments = append(sol.Assignments, Assignment{
				TripIdx:       t,
				VehicleIdx:    v,
				SequenceOrder: i + 1,
				StartMin:      start,
				IsLast:        i == len(trips)-1,
			})
			ready = start + tr.DurationMin + tr.ServiceMin
			prev = t
		}
		last := trips[len(trips)-1]
		sol.TotalDeadheadKm += in.Matrix.DistKm[in.Trips[last].Destination][in.Vehicles[v].Depot]
	}
	sort.SliceStable(sol.Assignments, func(a, b int) bool {
		va := in.Vehicles[sol.Assignments[a].VehicleIdx].ID
		vb := in.Vehicles[sol.Assignments[b].VehicleIdx].ID
		if va != vb {
			return va < vb
		}
		return sol.Assignments[a].SequenceOrder < sol.Assignments[b].SequenceOrder
	})
	return sol
}
