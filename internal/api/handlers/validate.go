package handlers

import (
	"errors"
	"fmt"

	"smart-route-planner/internal/api/dto"
	"smart-route-planner/internal/domain"
)

// toStops validates request points and converts them to domain stops,
// preserving their order.
func toStops(points []dto.PointIn) ([]domain.Stop, error) {
	seen := make(map[int]struct{}, len(points))
	stops := make([]domain.Stop, 0, len(points))

	for i, p := range points {
		if _, dup := seen[p.ID]; dup {
			return nil, errors.New("Duplicate point ids are not allowed")
		}
		seen[p.ID] = struct{}{}

		prio := domain.Priority(p.Priority)
		if !prio.Valid() {
			return nil, fmt.Errorf("points[%d].priority must be one of high, medium, low (got %q)", i, p.Priority)
		}
		if !(domain.Coordinates{Lat: p.Lat, Lon: p.Lon}).Valid() {
			return nil, fmt.Errorf("points[%d]: lat must be within [-90, 90] and lon within [-180, 180]", i)
		}

		stops = append(stops, domain.Stop{ID: p.ID, Lat: p.Lat, Lon: p.Lon, Priority: prio})
	}

	return stops, nil
}

// resolveOptions overlays the request's options on the server defaults.
func resolveOptions(defaults domain.Options, in *dto.OptionsIn) (domain.Options, error) {
	opts := defaults
	if in != nil {
		if in.Mode != nil {
			opts.Mode = domain.Mode(*in.Mode)
		}
		if in.Algorithm != nil {
			opts.Algorithm = domain.Algorithm(*in.Algorithm)
		}
		if in.DPLimit != nil {
			opts.DPLimit = *in.DPLimit
		}
	}

	if err := opts.Validate(); err != nil {
		return domain.Options{}, err
	}
	return opts, nil
}

func toResponse(res *domain.OptimizationResult) dto.OptimizeResponse {
	out := dto.OptimizeResponse{
		OrderedPoints: toPoints(res.Route),
		TotalDistance: res.TotalDistanceKm,
		GroupStats:    make(map[string]dto.GroupStatsOut, len(domain.Priorities)),
		RuntimeMs:     float64(res.Elapsed.Microseconds()) / 1000.0,
	}
	for _, p := range domain.Priorities {
		gs := res.GroupStats[p]
		out.GroupStats[string(p)] = dto.GroupStatsOut{Count: gs.Count, Distance: gs.DistanceKm}
	}
	return out
}

func toPoints(stops []domain.Stop) []dto.PointIn {
	out := make([]dto.PointIn, 0, len(stops))
	for _, s := range stops {
		out = append(out, dto.PointIn{ID: s.ID, Lat: s.Lat, Lon: s.Lon, Priority: string(s.Priority)})
	}
	return out
}
