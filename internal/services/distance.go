package services

import (
	"math"

	"smart-route-planner/internal/domain"
)

// EarthRadiusKm is the mean radius of the spherical Earth approximation.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between a and b in kilometers.
//
// The sqrt term is clamped to 1 so rounding at antipodal points can never push
// the asin argument out of its domain.
func HaversineKm(a, b domain.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sLat := math.Sin(dLat / 2)
	sLon := math.Sin(dLon / 2)
	h := sLat*sLat + math.Cos(lat1)*math.Cos(lat2)*sLon*sLon

	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// RouteDistanceKm sums the haversine distance between consecutive stops.
// Fewer than two stops have no edges and measure zero.
func RouteDistanceKm(stops []domain.Stop) float64 {
	total := 0.0
	for i := 1; i < len(stops); i++ {
		total += HaversineKm(stops[i-1].Coords(), stops[i].Coords())
	}
	return total
}

// DistanceMatrix builds the symmetric pairwise haversine matrix for points.
// Each pair is computed once and mirrored so dist[i][j] == dist[j][i] exactly.
func DistanceMatrix(points []domain.Coordinates) [][]float64 {
	n := len(points)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := HaversineKm(points[i], points[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

// pathLength is the open-path cost of visiting order over dist.
func pathLength(dist [][]float64, order []int) float64 {
	total := 0.0
	for i := 1; i < len(order); i++ {
		total += dist[order[i-1]][order[i]]
	}
	return total
}
