package services

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"smart-route-planner/internal/domain"
)

// candidate is one multi-start outcome: the improved route grown from start.
type candidate struct {
	start  int
	order  []int
	length float64
}

// shorter orders candidates by length, then by start index.
func shorter(a, b candidate) bool {
	if a.length != b.length {
		return a.length < b.length
	}
	return a.start < b.start
}

// SolveHeuristic approximates the shortest open path through points.
//
// Every point is tried as a start: a nearest-neighbor path is grown from it
// and polished with 2-opt. The shortest result wins, ties going to the lower
// start index. Starts run concurrently on up to GOMAXPROCS goroutines; the
// outcome does not depend on scheduling.
func SolveHeuristic(points []domain.Coordinates) []int {
	return solveHeuristic(DistanceMatrix(points), 0)
}

func solveHeuristic(dist [][]float64, workers int) []int {
	n := len(dist)
	if n <= 1 {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		return order
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	candidates := make([]candidate, n)
	var g errgroup.Group
	g.SetLimit(workers)
	for s := 0; s < n; s++ {
		g.Go(func() error {
			order := twoOpt(dist, nearestNeighborOrder(dist, s))
			candidates[s] = candidate{start: s, order: order, length: pathLength(dist, order)}
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	best := candidates[0]
	for _, c := range candidates[1:] {
		if shorter(c, best) {
			best = c
		}
	}
	return best.order
}
