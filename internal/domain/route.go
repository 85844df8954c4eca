package domain

import "time"

// Count and intra-group distance for one priority tier.
// Distance never includes the edge entering the tier from the previous one.
type GroupStat struct {
	Count      int
	DistanceKm float64
}

// Represents the outcome of one optimization call.
//
// Route is a permutation of the input stops, grouped high, medium, low with
// each tier contiguous. TotalDistanceKm is measured over the whole route,
// including the edges that cross from one tier to the next, so it is
// generally larger than the sum of the group distances.
// GroupStats always holds an entry for every tier, empty tiers included.
type OptimizationResult struct {
	Route           []Stop
	TotalDistanceKm float64
	GroupStats      map[Priority]GroupStat
	Elapsed         time.Duration
}
