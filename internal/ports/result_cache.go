package ports

import (
	"context"

	"smart-route-planner/internal/domain"
)

// Contract for memoizing optimization results by request fingerprint.
// Entries are disposable: a miss only means the result is recomputed.
type ResultCache interface {
	// Return the cached result for key; ok is false on a miss.
	Get(ctx context.Context, key string) (res *domain.OptimizationResult, ok bool, err error)
	Put(ctx context.Context, key string, res *domain.OptimizationResult) error
}
