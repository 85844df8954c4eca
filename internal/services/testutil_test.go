package services

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"smart-route-planner/internal/domain"
)

// randomPoints scatters n points over a city-sized box, reproducibly.
func randomPoints(seed uint64, n int) []domain.Coordinates {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pts := make([]domain.Coordinates, n)
	for i := range pts {
		pts[i] = domain.Coordinates{
			Lat: 52.3 + rng.Float64()*0.4,
			Lon: 4.7 + rng.Float64()*0.4,
		}
	}
	return pts
}

// planarMatrix is a Euclidean distance matrix for hand-checkable instances.
func planarMatrix(pts [][2]float64) [][]float64 {
	dist := make([][]float64, len(pts))
	for i := range pts {
		dist[i] = make([]float64, len(pts))
		for j := range pts {
			dist[i][j] = math.Hypot(pts[i][0]-pts[j][0], pts[i][1]-pts[j][1])
		}
	}
	return dist
}

// bruteForceMin enumerates every permutation (Heap's algorithm) and returns
// the minimum open-path length.
func bruteForceMin(dist [][]float64) float64 {
	n := len(dist)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	best := pathLength(dist, perm)

	c := make([]int, n)
	for i := 0; i < n; {
		if c[i] < i {
			if i%2 == 0 {
				perm[0], perm[i] = perm[i], perm[0]
			} else {
				perm[c[i]], perm[i] = perm[i], perm[c[i]]
			}
			best = math.Min(best, pathLength(dist, perm))
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}
	return best
}

func requirePermutation(t *testing.T, order []int, n int) {
	t.Helper()
	require.Len(t, order, n)
	sorted := slices.Clone(order)
	slices.Sort(sorted)
	for i, v := range sorted {
		require.Equal(t, i, v, "order %v is not a permutation of 0..%d", order, n-1)
	}
}

func makeStops(priorities ...domain.Priority) []domain.Stop {
	pts := randomPoints(uint64(len(priorities))+7, len(priorities))
	stops := make([]domain.Stop, len(priorities))
	for i, p := range priorities {
		stops[i] = domain.Stop{ID: i + 1, Lat: pts[i].Lat, Lon: pts[i].Lon, Priority: p}
	}
	return stops
}
