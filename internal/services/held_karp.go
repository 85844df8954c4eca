package services

import "math"

// SolveExact returns the visiting order minimizing the open-path length over
// dist using the Held-Karp subset dynamic program.
//
// cost[S][j] is the cheapest way to visit exactly the set S (a bitmask) and
// stop at j. Both tables are dense arrays of 2^n*n entries allocated up front.
// Time is O(2^n * n^2) and memory O(2^n * n), so callers must keep n small
// (at most domain.MaxDPLimit); the bound is not re-checked here.
//
// Ties are resolved toward the lowest index, both for predecessors and for
// the final end node, so equal inputs always produce the same order.
func SolveExact(dist [][]float64) []int {
	n := len(dist)
	switch n {
	case 0:
		return []int{}
	case 1:
		return []int{0}
	}

	full := 1<<n - 1
	cost := make([]float64, (full+1)*n)
	parent := make([]int32, (full+1)*n)
	for i := range cost {
		cost[i] = math.Inf(1)
		parent[i] = -1
	}

	// Any node may start the path.
	for j := 0; j < n; j++ {
		cost[(1<<j)*n+j] = 0
	}

	for mask := 1; mask <= full; mask++ {
		if mask&(mask-1) == 0 {
			continue // singleton, already seeded
		}
		for j := 0; j < n; j++ {
			if mask&(1<<j) == 0 {
				continue
			}
			prev := mask ^ (1 << j)
			best, from := math.Inf(1), -1
			for i := 0; i < n; i++ {
				if prev&(1<<i) == 0 {
					continue
				}
				if c := cost[prev*n+i] + dist[i][j]; c < best {
					best, from = c, i
				}
			}
			cost[mask*n+j] = best
			parent[mask*n+j] = int32(from)
		}
	}

	end := 0
	for j := 1; j < n; j++ {
		if cost[full*n+j] < cost[full*n+end] {
			end = j
		}
	}

	// Walk the back-pointers from the chosen end to the singleton start.
	order := make([]int, n)
	mask, cur := full, end
	for k := n - 1; k >= 0; k-- {
		order[k] = cur
		prev := int(parent[mask*n+cur])
		mask ^= 1 << cur
		cur = prev
	}

	return order
}
