package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinCostAssignment_PicksCheapestPerfectMatching(t *testing.T) {
	cost := [][]float64{
		{4, 1, 9},
		{2, 0, 5},
	}

	match, total, ok := minCostAssignment(cost)

	require.True(t, ok)
	assert.Equal(t, []int{1, 0}, match)
	assert.InDelta(t, 3.0, total, 1e-9)
}

func TestMinCostAssignment_RespectsForbiddenPairs(t *testing.T) {
	inf := math.Inf(1)
	// Row 0 may only take column 0, forcing row 1 off its cheapest column
	cost := [][]float64{
		{2, inf},
		{1, 7},
	}

	match, total, ok := minCostAssignment(cost)

	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, match)
	assert.InDelta(t, 9.0, total, 1e-9)
}

func TestMinCostAssignment_InfeasibleWhenNoPerfectMatching(t *testing.T) {
	inf := math.Inf(1)
	cost := [][]float64{
		{inf, inf},
		{1, 2},
	}

	_, _, ok := minCostAssignment(cost)

	assert.False(t, ok)
}

func TestMinCostAssignment_MoreRowsThanColumnsIsInfeasible(t *testing.T) {
	cost := [][]float64{
		{1, 2},
		{3, 4},
		{5, 6},
	}

	_, _, ok := minCostAssignment(cost)

	assert.False(t, ok)
}

func TestMinCostAssignment_RectangularLeavesColumnsFree(t *testing.T) {
	cost := [][]float64{
		{10, 3, 8, 1},
	}

	match, total, ok := minCostAssignment(cost)

	require.True(t, ok)
	assert.Equal(t, []int{3}, match)
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestMinCostAssignment_EmptyIsTriviallyFeasible(t *testing.T) {
	match, total, ok := minCostAssignment(nil)

	require.True(t, ok)
	assert.Empty(t, match)
	assert.Zero(t, total)
}
