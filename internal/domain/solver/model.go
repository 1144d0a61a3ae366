package solver

import (
	"math"
	"sort"
	"time"

	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
)

// The solver works on an arena of plain values indexed by position: trips and
// vehicles reference matrix slots by integer index and each other never. All
// times are integer minutes since the batch day's UTC midnight.

// Trip is one feasible trip inside a vehicle-category group
type Trip struct {
	ID        string
	CompanyID string

	Origin      int // matrix index
	Destination int // matrix index

	EarliestMin    int // departure time
	LatestStartMin int // max(earliest, planned arrival - duration)
	DurationMin    int
	ServiceMin     int

	WeightKg  float64
	VolumeM3  float64
	HasVolume bool

	// ReturnEstimateKm is the solo-return estimate r_i0: destination to the
	// trip's own company depot, backfilled when the journal omits it.
	ReturnEstimateKm float64
}

// Vehicle is one candidate vehicle inside a group
type Vehicle struct {
	ID        string
	CompanyID string

	Depot int // matrix index

	CapacityKg   float64
	CapacityM3   float64
	HasVolumeCap bool
}

// CanCarry reports whether a single shipment fits this vehicle
func (v *Vehicle) CanCarry(weightKg, volumeM3 float64, hasVolume bool) bool {
	if weightKg > v.CapacityKg {
		return false
	}
	if hasVolume && v.HasVolumeCap && volumeM3 > v.CapacityM3 {
		return false
	}
	return true
}

// Matrix is the travel lookup for the group's arena points
type Matrix struct {
	TravelMin [][]int
	DistKm    [][]float64
}

// NewMatrix converts raw provider slices (seconds, meters) into solver units.
// Seconds round half-up to minutes so that deduplicated identical points and
// diagonals stay at zero.
func NewMatrix(durationsS, distancesM [][]float64) *Matrix {
	n := len(durationsS)
	travel := make([][]int, n)
	dist := make([][]float64, n)
	for i := 0; i < n; i++ {
		travel[i] = make([]int, n)
		dist[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			travel[i][j] = int(math.Round(durationsS[i][j] / 60.0))
			dist[i][j] = distancesM[i][j] / 1000.0
		}
	}
	return &Matrix{TravelMin: travel, DistKm: dist}
}

// Input is one vehicle-category group handed to the solver.
// Groups partition trips and vehicles; no state is shared between them.
type Input struct {
	Group    string // category code, for diagnostics only
	Trips    []Trip
	Vehicles []Vehicle
	Matrix   *Matrix
}

// Config carries the solver controls
type Config struct {
	// Budget is the wall-time budget for a cross-company group; zero means
	// unbounded. Pass 2 receives whatever Pass 1 leaves over.
	Budget time.Duration

	// SingleBudget bounds the single-company improvement phase
	SingleBudget time.Duration

	// DropPenalty prices an unserved trip in single-company mode
	DropPenalty float64

	Clock shared.Clock
}

func (c Config) clock() shared.Clock {
	if c.Clock == nil {
		return shared.NewRealClock()
	}
	return c.Clock
}

// Assignment binds one trip to a vehicle at a position in its chain
type Assignment struct {
	TripIdx       int
	VehicleIdx    int
	SequenceOrder int // dense, 1-based per vehicle
	StartMin      int
	IsLast        bool
}

// Solution is the solved plan for one group
type Solution struct {
	Assignments     []Assignment
	Unassigned      []int // trip indices left out of the plan
	VehiclesUsed    int
	TotalDeadheadKm float64
	Fallback        bool // round-robin degrade was used
	TimedOut        bool
	Status          string // optimal | feasible | fallback | empty
}

// Statuses reported per group
const (
	StatusOptimal  = "optimal"
	StatusFeasible = "feasible"
	StatusFallback = "fallback"
	StatusEmpty    = "empty"
)

// compatibleVehicles returns the indices of vehicles that can carry the trip,
// in stable order.
func (in *Input) compatibleVehicles(t *Trip) []int {
	var out []int
	for v := range in.Vehicles {
		if in.Vehicles[v].CanCarry(t.WeightKg, t.VolumeM3, t.HasVolume) {
			out = append(out, v)
		}
	}
	return out
}

// tripOrder returns trip indices sorted by (earliest, id), the canonical
// branching order of the search.
func (in *Input) tripOrder() []int {
	order := make([]int, len(in.Trips))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ta, tb := &in.Trips[order[a]], &in.Trips[order[b]]
		if ta.EarliestMin != tb.EarliestMin {
			return ta.EarliestMin < tb.EarliestMin
		}
		return ta.ID < tb.ID
	})
	return order
}

// BuildArcs computes the precedence-feasible arc set: (i,j) is kept iff
// earliest(i) + duration(i) + service(i) + travel(dest_i → orig_j) does not
// exceed latest_start(j). Returns adjacency lists in canonical order and a
// membership table.
func BuildArcs(in *Input) (adj [][]int, arcSet [][]bool) {
	n := len(in.Trips)
	adj = make([][]int, n)
	arcSet = make([][]bool, n)
	for i := 0; i < n; i++ {
		arcSet[i] = make([]bool, n)
	}
	order := in.tripOrder()
	for i := 0; i < n; i++ {
		ti := &in.Trips[i]
		ready := ti.EarliestMin + ti.DurationMin + ti.ServiceMin
		for _, j := range order {
			if j == i {
				continue
			}
			tj := &in.Trips[j]
			travel := in.Matrix.TravelMin[ti.Destination][tj.Origin]
			if ready+travel <= tj.LatestStartMin {
				adj[i] = append(adj[i], j)
				arcSet[i][j] = true
			}
		}
	}
	return adj, arcSet
}
