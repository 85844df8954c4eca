package services

import "slices"

const (
	// twoOptEpsilon is the minimum gain a reversal must achieve. It keeps
	// floating-point noise from cycling between equivalent routes.
	twoOptEpsilon = 1e-9
	// twoOptMaxPasses bounds the number of accepted moves per run.
	twoOptMaxPasses = 200
)

// twoOpt improves an open path by first-improvement 2-opt.
//
// Each pass scans segments [i..k] with 1 <= i < k <= n-1 and reverses the
// first one that shortens the path by more than twoOptEpsilon, then starts
// the next pass from the top. The first node never moves, so the start
// chosen by the construction step is preserved. The input is not modified.
func twoOpt(dist [][]float64, order []int) []int {
	route := slices.Clone(order)
	if len(route) <= 2 {
		return route
	}

	for pass := 0; pass < twoOptMaxPasses; pass++ {
		if !twoOptMove(dist, route) {
			break
		}
	}

	return route
}

// twoOptMove applies the first improving reversal in place and reports
// whether one was found. dist must be symmetric: only the two boundary
// edges of the reversed segment change.
func twoOptMove(dist [][]float64, route []int) bool {
	n := len(route)
	for i := 1; i < n-1; i++ {
		for k := i + 1; k < n; k++ {
			a, b, c := route[i-1], route[i], route[k]

			delta := dist[a][c] - dist[a][b]
			if k+1 < n {
				d := route[k+1]
				delta += dist[b][d] - dist[c][d]
			}

			if delta < -twoOptEpsilon {
				slices.Reverse(route[i : k+1])
				return true
			}
		}
	}
	return false
}
