package services

import (
	"errors"
	"fmt"

	"smart-route-planner/internal/domain"
)

var (
	// ErrTierTooLarge is returned when algorithm dp is requested for a tier
	// larger than the options' DPLimit.
	ErrTierTooLarge = errors.New("tier too large for the exact solver")
	// ErrTooManyStops is returned when a request exceeds Planner.MaxStops.
	ErrTooManyStops = errors.New("too many stops")
)

// CheckTierSizes rejects option and stop combinations the exact solver cannot
// handle. Auto never needs this (it switches to the heuristic above DPLimit),
// but an explicit dp request would otherwise allocate 2^n*n tables per tier.
// Optimize does not call it; callers run it on untrusted input first.
func CheckTierSizes(stops []domain.Stop, opts domain.Options) error {
	if opts.Mode == domain.ModeStrict || opts.Algorithm != domain.AlgorithmDP {
		return nil
	}

	groups := PartitionByPriority(stops)
	for _, p := range domain.Priorities {
		if n := len(groups[p]); n > opts.DPLimit {
			return fmt.Errorf("%w: %s tier has %d stops, algorithm dp allows at most dp_limit=%d",
				ErrTierTooLarge, p, n, opts.DPLimit)
		}
	}
	return nil
}

// checkStopCount enforces limit when it is positive.
func checkStopCount(stops []domain.Stop, limit int) error {
	if limit > 0 && len(stops) > limit {
		return fmt.Errorf("%w: got %d, at most %d allowed", ErrTooManyStops, len(stops), limit)
	}
	return nil
}
