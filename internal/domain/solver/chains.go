package solver

// chain is one vehicle work sequence under construction. Start times are kept
// minimal: each trip starts as early as its window and its predecessor allow.
// Minimal starts never cut off a downstream extension, so the propagation is
// exact for feasibility checking.
type chain struct {
	trips  []int
	starts []int

	last    int // trip index of the final trip
	readyAt int // start + duration + service of the final trip

	maxW   float64
	maxVol float64
	hasVol bool
	sumRi0 float64
}

// chainUndo captures the scalar state replaced by a push
type chainUndo struct {
	last    int
	readyAt int
	maxW    float64
	maxVol  float64
	hasVol  bool
	sumRi0  float64
}

func newChain(in *Input, t int) *chain {
	tr := &in.Trips[t]
	start := tr.EarliestMin
	return &chain{
		trips:   []int{t},
		starts:  []int{start},
		last:    t,
		readyAt: start + tr.DurationMin + tr.ServiceMin,
		maxW:    tr.WeightKg,
		maxVol:  tr.VolumeM3,
		hasVol:  tr.HasVolume,
		sumRi0:  tr.ReturnEstimateKm,
	}
}

// extendStart returns the minimal feasible start of trip t appended after the
// chain's final trip, or ok=false when the time windows forbid it.
func (c *chain) extendStart(in *Input, t int) (int, bool) {
	tr := &in.Trips[t]
	travel := in.Matrix.TravelMin[in.Trips[c.last].Destination][tr.Origin]
	start := c.readyAt + travel
	if start < tr.EarliestMin {
		start = tr.EarliestMin
	}
	if start > tr.LatestStartMin {
		return 0, false
	}
	return start, true
}

// push appends trip t starting at start and returns the undo record
func (c *chain) push(in *Input, t, start int) chainUndo {
	undo := chainUndo{
		last:    c.last,
		readyAt: c.readyAt,
		maxW:    c.maxW,
		maxVol:  c.maxVol,
		hasVol:  c.hasVol,
		sumRi0:  c.sumRi0,
	}
	tr := &in.Trips[t]
	c.trips = append(c.trips, t)
	c.starts = append(c.starts, start)
	c.last = t
	c.readyAt = start + tr.DurationMin + tr.ServiceMin
	if tr.WeightKg > c.maxW {
		c.maxW = tr.WeightKg
	}
	if tr.HasVolume {
		c.hasVol = true
		if tr.VolumeM3 > c.maxVol {
			c.maxVol = tr.VolumeM3
		}
	}
	c.sumRi0 += tr.ReturnEstimateKm
	return undo
}

// pop reverts the most recent push
func (c *chain) pop(undo chainUndo) {
	c.trips = c.trips[:len(c.trips)-1]
	c.starts = c.starts[:len(c.starts)-1]
	c.last = undo.last
	c.readyAt = undo.readyAt
	c.maxW = undo.maxW
	c.maxVol = undo.maxVol
	c.hasVol = undo.hasVol
	c.sumRi0 = undo.sumRi0
}

// clone freezes the chain for an incumbent snapshot
func (c *chain) clone() *chain {
	cp := *c
	cp.trips = append([]int(nil), c.trips...)
	cp.starts = append([]int(nil), c.starts...)
	return &cp
}

// anyVehicleFits reports whether some vehicle can carry every trip of a chain
// with the given aggregate requirements.
func (in *Input) anyVehicleFits(maxW, maxVol float64, hasVol bool) bool {
	for v := range in.Vehicles {
		if in.Vehicles[v].CanCarry(maxW, maxVol, hasVol) {
			return true
		}
	}
	return false
}

// mergedCaps returns the chain's capacity requirements after appending t
func mergedCaps(in *Input, c *chain, t int) (float64, float64, bool) {
	tr := &in.Trips[t]
	maxW, maxVol, hasVol := c.maxW, c.maxVol, c.hasVol
	if tr.WeightKg > maxW {
		maxW = tr.WeightKg
	}
	if tr.HasVolume {
		hasVol = true
		if tr.VolumeM3 > maxVol {
			maxVol = tr.VolumeM3
		}
	}
	return maxW, maxVol, hasVol
}

// returnKm is the planned deadhead when vehicle v closes the chain
func returnKm(in *Input, c *chain, v int) float64 {
	return in.Matrix.DistKm[in.Trips[c.last].Destination][in.Vehicles[v].Depot]
}

// edgeAllowed reports whether vehicle v may run chain c: the vehicle carries
// every trip, and the planned return deadhead stays within the chain's summed
// solo-return estimates (the conservative clamp on planned deadhead).
func edgeAllowed(in *Input, c *chain, v int) bool {
	veh := &in.Vehicles[v]
	if !veh.CanCarry(c.maxW, c.maxVol, c.hasVol) {
		return false
	}
	return returnKm(in, c, v) <= c.sumRi0+1e-9
}

// greedyPartition builds a first-fit incumbent: trips in canonical order, each
// appended to the first chain that accepts it, otherwise opening a new chain.
func greedyPartition(in *Input, arcSet [][]bool, order []int) []*chain {
	var chains []*chain
	for _, t := range order {
		placed := false
		for _, c := range chains {
			if !arcSet[c.last][t] {
				continue
			}
			start, ok := c.extendStart(in, t)
			if !ok {
				continue
			}
			maxW, maxVol, hasVol := mergedCaps(in, c, t)
			if !in.anyVehicleFits(maxW, maxVol, hasVol) {
				continue
			}
			c.push(in, t, start)
			placed = true
			break
		}
		if !placed {
			chains = append(chains, newChain(in, t))
		}
	}
	return chains
}
