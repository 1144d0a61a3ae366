package services

import (
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
)

// PointArena collects the distinct geographic points of one batch and gives
// every point a stable matrix index. Points closer than ~0.1 m collapse onto
// one slot through the canonical coordinate key.
type PointArena struct {
	points []shared.GeoPoint
	index  map[string]int
}

func NewPointArena() *PointArena {
	return &PointArena{index: make(map[string]int)}
}

// Add registers the point and returns its matrix index, deduplicating on the
// canonical key.
func (a *PointArena) Add(p shared.GeoPoint) int {
	key := p.Key()
	if idx, ok := a.index[key]; ok {
		return idx
	}
	idx := len(a.points)
	a.points = append(a.points, p)
	a.index[key] = idx
	return idx
}

// IndexOf returns the matrix index of a previously added point
func (a *PointArena) IndexOf(p shared.GeoPoint) (int, bool) {
	idx, ok := a.index[p.Key()]
	return idx, ok
}

// Points returns the points in index order
func (a *PointArena) Points() []shared.GeoPoint {
	return a.points
}

// Len returns the number of distinct points
func (a *PointArena) Len() int {
	return len(a.points)
}
