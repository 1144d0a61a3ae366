package solver

import "math"

// minCostAssignment solves the rectangular assignment problem with the
// Jonker-Volgenant potentials method: rows must all be matched to distinct
// columns, len(cost) <= len(cost[0]). A cost of +Inf marks a forbidden pair.
// Returns the column matched to each row and the total cost; ok=false when no
// finite perfect matching over the rows exists.
func minCostAssignment(cost [][]float64) (match []int, total float64, ok bool) {
	n := len(cost)
	if n == 0 {
		return nil, 0, true
	}
	m := len(cost[0])
	if n > m {
		return nil, 0, false
	}

	// 1-based arrays with a sentinel row/column
	u := make([]float64, n+1)
	v := make([]float64, m+1)
	p := make([]int, m+1) // p[j] = row assigned to column j, 0 = free
	way := make([]int, m+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, m+1)
		used := make([]bool, m+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := math.Inf(1)
			j1 := -1

			for j := 1; j <= m; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			if j1 == -1 || math.IsInf(delta, 1) {
				// No finite augmenting path: the rows cannot all be matched
				return nil, 0, false
			}

			for j := 0; j <= m; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}

			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		// Augment along the alternating path
		for {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
			if j0 == 0 {
				break
			}
		}
	}

	match = make([]int, n)
	for j := 1; j <= m; j++ {
		if p[j] > 0 {
			match[p[j]-1] = j - 1
			total += cost[p[j]-1][j-1]
		}
	}
	return match, total, true
}
