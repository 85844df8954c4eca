package services

import "smart-route-planner/internal/domain"

// PartitionByPriority splits stops into the three priority tiers.
//
// The split is stable: stops keep their input order inside each tier. Every
// tier key is present in the result, even when empty. A stop carrying an
// unknown priority lands in the low tier; the API rejects such input, so
// this only matters for callers that skip validation.
func PartitionByPriority(stops []domain.Stop) map[domain.Priority][]domain.Stop {
	groups := make(map[domain.Priority][]domain.Stop, len(domain.Priorities))
	for _, p := range domain.Priorities {
		groups[p] = []domain.Stop{}
	}

	for _, s := range stops {
		p := s.Priority
		if !p.Valid() {
			p = domain.PriorityLow
		}
		groups[p] = append(groups[p], s)
	}

	return groups
}
