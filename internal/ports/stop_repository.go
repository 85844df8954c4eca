package ports

import (
	"context"

	"smart-route-planner/internal/domain"
)

// Port: a boundary for retrieving stored stop batches.
type StopRepository interface {
	// Return the stops of a batch in insertion order. An unknown batch yields no stops.
	ListStops(ctx context.Context, batchID string) ([]domain.Stop, error)
}
