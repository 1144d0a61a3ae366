package solver

import (
	"math"
	"sort"
	"time"

	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
)

type passMode int

const (
	passCount passMode = iota // Pass 1: minimize the number of chains
	passCost                  // Pass 2: minimize return deadhead, fleet bound fixed
)

// searcher runs a depth-first enumeration of chain partitions. Trips are
// placed in canonical (earliest, id) order; each trip either extends an open
// chain or opens a new one, so every partition is visited exactly once.
// A leaf is feasible when its chains admit a perfect assignment to distinct
// compatible vehicles.
type searcher struct {
	in     *Input
	order  []int
	arcSet [][]bool

	clock    shared.Clock
	deadline time.Time // zero = unbounded
	nodes    int
	timedOut bool

	mode      passMode
	maxChains int // pass 2 bound (L*)

	found      bool
	bestCount  int
	bestCost   float64
	bestChains []*chain
	bestMatch  []int
}

// chainLimit bounds how many chains may be open at once
func (s *searcher) chainLimit() int {
	limit := len(s.in.Vehicles)
	if s.mode == passCount {
		if s.found && s.bestCount-1 < limit {
			limit = s.bestCount - 1
		}
		return limit
	}
	if s.maxChains < limit {
		limit = s.maxChains
	}
	return limit
}

func (s *searcher) expired() bool {
	if s.timedOut {
		return true
	}
	if s.nodes&255 == 0 && !s.deadline.IsZero() && s.clock.Now().After(s.deadline) {
		s.timedOut = true
	}
	return s.timedOut
}

func (s *searcher) search(chains []*chain, k int) {
	s.nodes++
	if s.expired() {
		return
	}
	if k == len(s.order) {
		s.onLeaf(chains)
		return
	}

	t := s.order[k]

	// Extend an open chain, earliest-created first
	for _, c := range chains {
		if !s.arcSet[c.last][t] {
			continue
		}
		start, ok := c.extendStart(s.in, t)
		if !ok {
			continue
		}
		maxW, maxVol, hasVol := mergedCaps(s.in, c, t)
		if !s.in.anyVehicleFits(maxW, maxVol, hasVol) {
			continue
		}
		undo := c.push(s.in, t, start)
		s.search(chains, k+1)
		c.pop(undo)
		if s.timedOut {
			return
		}
	}

	// Open a new chain when the bound allows one more vehicle
	if len(chains) < s.chainLimit() {
		s.search(append(chains, newChain(s.in, t)), k+1)
	}
}

// onLeaf scores a complete partition through the chain→vehicle assignment
func (s *searcher) onLeaf(chains []*chain) {
	count := len(chains)
	if s.mode == passCount && s.found && count >= s.bestCount {
		return
	}

	// Cheap reject before the assignment solve
	for _, c := range chains {
		any := false
		for v := range s.in.Vehicles {
			if edgeAllowed(s.in, c, v) {
				any = true
				break
			}
		}
		if !any {
			return
		}
	}

	cost := make([][]float64, count)
	for ci, c := range chains {
		row := make([]float64, len(s.in.Vehicles))
		for v := range s.in.Vehicles {
			if edgeAllowed(s.in, c, v) {
				row[v] = returnKm(s.in, c, v)
			} else {
				row[v] = math.Inf(1)
			}
		}
		cost[ci] = row
	}

	match, total, ok := minCostAssignment(cost)
	if !ok {
		return
	}

	improved := false
	switch s.mode {
	case passCount:
		improved = !s.found || count < s.bestCount
	case passCost:
		improved = total < s.bestCost-1e-9
	}
	if !improved {
		return
	}

	s.found = true
	s.bestCount = count
	s.bestCost = total
	s.bestMatch = match
	s.bestChains = make([]*chain, count)
	for ci, c := range chains {
		s.bestChains[ci] = c.clone()
	}
}

// extract converts the incumbent into a solution, assignments ordered by
// vehicle then sequence.
func (s *searcher) extract() *Solution {
	sol := &Solution{VehiclesUsed: len(s.bestChains)}
	for ci, c := range s.bestChains {
		v := s.bestMatch[ci]
		for pos, t := range c.trips {
			sol.Assignments = append(sol.Assignments, Assignment{
				TripIdx:       t,
				VehicleIdx:    v,
				SequenceOrder: pos + 1,
				StartMin:      c.starts[pos],
				IsLast:        pos == len(c.trips)-1,
			})
		}
		sol.TotalDeadheadKm += returnKm(s.in, c, v)
	}
	sort.SliceStable(sol.Assignments, func(a, b int) bool {
		va := s.in.Vehicles[sol.Assignments[a].VehicleIdx].ID
		vb := s.in.Vehicles[sol.Assignments[b].VehicleIdx].ID
		if va != vb {
			return va < vb
		}
		return sol.Assignments[a].SequenceOrder < sol.Assignments[b].SequenceOrder
	})
	return sol
}

// SolveCrossCompany runs the lexicographic two-pass search for one group:
// Pass 1 minimizes the number of vehicles used, Pass 2 minimizes the total
// return deadhead among plans that respect the Pass 1 optimum. The search is
// exact under an unbounded budget and keeps the best incumbent otherwise.
// Returns SolverInfeasibleError or SolverTimeoutError when no plan covering
// every trip exists within the budget; the caller degrades to round-robin.
func SolveCrossCompany(in *Input, cfg Config) (*Solution, error) {
	if len(in.Trips) == 0 {
		return &Solution{Status: StatusEmpty}, nil
	}
	if len(in.Vehicles) == 0 {
		return nil, shared.NewSolverInfeasibleError(in.Group)
	}

	clock := cfg.clock()
	var deadline time.Time
	if cfg.Budget > 0 {
		deadline = clock.Now().Add(cfg.Budget)
	}

	order := in.tripOrder()
	_, arcSet := BuildArcs(in)

	s := &searcher{
		in:        in,
		order:     order,
		arcSet:    arcSet,
		clock:     clock,
		deadline:  deadline,
		mode:      passCount,
		bestCount: len(in.Vehicles) + 1,
	}

	// First-fit incumbent tightens the bound before the search expands a node
	s.onLeaf(greedyPartition(in, arcSet, order))

	s.search(nil, 0)
	if !s.found {
		if s.timedOut {
			return nil, shared.NewSolverTimeoutError(in.Group)
		}
		return nil, shared.NewSolverInfeasibleError(in.Group)
	}
	pass1Complete := !s.timedOut

	// Pass 2 keeps the Pass 1 incumbent and re-searches within the fleet bound
	s.mode = passCost
	s.maxChains = s.bestCount
	s.timedOut = false
	s.search(nil, 0)
	pass2Complete := !s.timedOut

	sol := s.extract()
	if pass1Complete && pass2Complete {
		sol.Status = StatusOptimal
	} else {
		sol.Status = StatusFeasible
		sol.TimedOut = true
	}
	return sol, nil
}
