package solver

import (
	"sort"
	"time"
)

// DefaultDropPenalty prices an unserved trip far above any realistic arc sum
// so the heuristic only drops trips no vehicle can serve.
const DefaultDropPenalty = 1e9

func (c Config) dropPenalty() float64 {
	if c.DropPenalty > 0 {
		return c.DropPenalty
	}
	return DefaultDropPenalty
}

// arcMin is the time-based arc cost used in single-company mode: travel to
// the trip plus the trip's own driving time, in minutes.
func (in *Input) arcMin(fromDest, t int) float64 {
	tr := &in.Trips[t]
	return float64(in.Matrix.TravelMin[fromDest][tr.Origin] + tr.DurationMin)
}

func (in *Input) firstArcMin(v, t int) float64 {
	tr := &in.Trips[t]
	return float64(in.Matrix.TravelMin[in.Vehicles[v].Depot][tr.Origin] + tr.DurationMin)
}

func (in *Input) returnArcMin(v, t int) float64 {
	return float64(in.Matrix.TravelMin[in.Trips[t].Destination][in.Vehicles[v].Depot])
}

// propagateRoute computes minimal start times along a route, nil when a time
// window cannot be met. The vehicle leaves its depot as late as the first
// trip's window allows, so only inter-trip slack matters.
func (in *Input) propagateRoute(route []int) ([]int, bool) {
	starts := make([]int, len(route))
	ready, prev := 0, -1
	for i, t := range route {
		tr := &in.Trips[t]
		start := tr.EarliestMin
		if prev >= 0 {
			travel := in.Matrix.TravelMin[in.Trips[prev].Destination][tr.Origin]
			if ready+travel > start {
				start = ready + travel
			}
		}
		if start > tr.LatestStartMin {
			return nil, false
		}
		starts[i] = start
		ready = start + tr.DurationMin + tr.ServiceMin
		prev = t
	}
	return starts, true
}

// routeCost sums the time-based arcs of a route including depot legs.
func (in *Input) routeCost(v int, route []int) float64 {
	if len(route) == 0 {
		return 0
	}
	cost := in.firstArcMin(v, route[0])
	for i := 1; i < len(route); i++ {
		cost += in.arcMin(in.Trips[route[i-1]].Destination, route[i])
	}
	return cost + in.returnArcMin(v, route[len(route)-1])
}

func (in *Input) routeLoadFits(v int, route []int) bool {
	veh := &in.Vehicles[v]
	for _, t := range route {
		tr := &in.Trips[t]
		if !veh.CanCarry(tr.WeightKg, tr.VolumeM3, tr.HasVolume) {
			return false
		}
	}
	return true
}

func insertAt(route []int, pos, t int) []int {
	out := make([]int, 0, len(route)+1)
	out = append(out, route[:pos]...)
	out = append(out, t)
	return append(out, route[pos:]...)
}

func removeAt(route []int, pos int) []int {
	out := make([]int, 0, len(route)-1)
	out = append(out, route[:pos]...)
	return append(out, route[pos+1:]...)
}

type insertion struct {
	trip, vehicle, pos int
	delta              float64
	ok                 bool
}

// bestInsertion scans every feasible (vehicle, position) slot for the pending
// trips and returns the cheapest, ties broken by trip then vehicle order.
// Slots costing at least the drop penalty are treated as drops.
func (in *Input) bestInsertion(routes [][]int, pending []int, penalty float64) insertion {
	best := insertion{}
	for _, t := range pending {
		tr := &in.Trips[t]
		for v := range in.Vehicles {
			if !in.Vehicles[v].CanCarry(tr.WeightKg, tr.VolumeM3, tr.HasVolume) {
				continue
			}
			base := in.routeCost(v, routes[v])
			for pos := 0; pos <= len(routes[v]); pos++ {
				cand := insertAt(routes[v], pos, t)
				if _, ok := in.propagateRoute(cand); !ok {
					continue
				}
				delta := in.routeCost(v, cand) - base
				if delta >= penalty {
					continue
				}
				if !best.ok || delta < best.delta-1e-9 {
					best = insertion{trip: t, vehicle: v, pos: pos, delta: delta, ok: true}
				}
			}
		}
	}
	return best
}

func (in *Input) insertAll(routes [][]int, pending []int, penalty float64) ([][]int, []int) {
	for len(pending) > 0 {
		ins := in.bestInsertion(routes, pending, penalty)
		if !ins.ok {
			break
		}
		routes[ins.vehicle] = insertAt(routes[ins.vehicle], ins.pos, ins.trip)
		rest := pending[:0:0]
		for _, t := range pending {
			if t != ins.trip {
				rest = append(rest, t)
			}
		}
		pending = rest
	}
	return routes, pending
}

// relocateOnce moves one trip to the slot that lowers total cost the most.
// Returns false when no strictly improving move exists.
func (in *Input) relocateOnce(routes [][]int) bool {
	type move struct {
		fromV, fromPos, toV, toPos int
		gain                       float64
		ok                         bool
	}
	best := move{}
	for fromV := range routes {
		for fromPos, t := range routes[fromV] {
			reduced := removeAt(routes[fromV], fromPos)
			saved := in.routeCost(fromV, routes[fromV]) - in.routeCost(fromV, reduced)
			tr := &in.Trips[t]
			for toV := range routes {
				if !in.Vehicles[toV].CanCarry(tr.WeightKg, tr.VolumeM3, tr.HasVolume) {
					continue
				}
				target := routes[toV]
				if toV == fromV {
					target = reduced
				}
				base := in.routeCost(toV, target)
				for pos := 0; pos <= len(target); pos++ {
					if toV == fromV && pos == fromPos {
						continue
					}
					cand := insertAt(target, pos, t)
					if _, ok := in.propagateRoute(cand); !ok {
						continue
					}
					if toV != fromV {
						if _, ok := in.propagateRoute(reduced); !ok {
							continue
						}
					}
					gain := saved - (in.routeCost(toV, cand) - base)
					if gain > 1e-9 && (!best.ok || gain > best.gain+1e-9) {
						best = move{fromV: fromV, fromPos: fromPos, toV: toV, toPos: pos, gain: gain, ok: true}
					}
				}
			}
		}
	}
	if !best.ok {
		return false
	}
	t := routes[best.fromV][best.fromPos]
	routes[best.fromV] = removeAt(routes[best.fromV], best.fromPos)
	routes[best.toV] = insertAt(routes[best.toV], best.toPos, t)
	return true
}

// SolveSingleCompany plans one fleet's day as a vehicle-routing problem with
// time windows: cheapest-insertion construction followed by relocate
// improvement, trips that fit nowhere carry the drop penalty and are reported
// unassigned. The heuristic always returns a plan.
func SolveSingleCompany(in *Input, cfg Config) (*Solution, error) {
	if len(in.Trips) == 0 {
		return &Solution{Status: StatusEmpty}, nil
	}

	clock := cfg.clock()
	var deadline time.Time
	if cfg.SingleBudget > 0 {
		deadline = clock.Now().Add(cfg.SingleBudget)
	}

	penalty := cfg.dropPenalty()
	routes := make([][]int, len(in.Vehicles))
	pending := in.tripOrder()
	routes, pending = in.insertAll(routes, pending, penalty)

	timedOut := false
	for {
		if !deadline.IsZero() && clock.Now().After(deadline) {
			timedOut = true
			break
		}
		if !in.relocateOnce(routes) {
			break
		}
		// A move can free window slack for a previously dropped trip
		if len(pending) > 0 {
			routes, pending = in.insertAll(routes, pending, penalty)
		}
	}

	sol := &Solution{Unassigned: pending, TimedOut: timedOut}
	if timedOut {
		sol.Status = StatusFeasible
	} else {
		sol.Status = StatusOptimal
	}
	for v, route := range routes {
		if len(route) == 0 {
			continue
		}
		sol.VehiclesUsed++
		starts, _ := in.propagateRoute(route)
		for pos, t := range route {
			sol.Assignments = append(sol.Assignments, Assignment{
				TripIdx:       t,
				VehicleIdx:    v,
				SequenceOrder: pos + 1,
				StartMin:      starts[pos],
				IsLast:        pos == len(route)-1,
			})
		}
		last := route[len(route)-1]
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
	return sol, nil
}
