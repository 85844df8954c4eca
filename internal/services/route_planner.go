package services

import (
	"sync"
	"time"

	"smart-route-planner/internal/domain"
)

// solverKind is the closed set of per-tier solvers.
type solverKind int

const (
	exactSolver solverKind = iota
	heuristicSolver
)

func (k solverKind) String() string {
	if k == exactSolver {
		return "exact"
	}
	return "heuristic"
}

// selectSolver picks the solver for a tier of the given size.
// An explicit algorithm wins; auto uses the exact solver up to DPLimit.
func selectSolver(size int, opts domain.Options) solverKind {
	switch opts.Algorithm {
	case domain.AlgorithmDP:
		return exactSolver
	case domain.AlgorithmHeuristic:
		return heuristicSolver
	}
	if size <= opts.DPLimit {
		return exactSolver
	}
	return heuristicSolver
}

// TierRun describes one solver invocation, reported through Optimizer.Observe.
type TierRun struct {
	Priority domain.Priority
	Solver   string
	Size     int
	Elapsed  time.Duration
}

// Optimizer orders stops tier by tier.
//
// Workers caps the goroutines used by the heuristic's multi-start search
// (zero means GOMAXPROCS). Observe, when set, is called once per solved tier
// and must be safe for concurrent use. The zero value is ready to use.
type Optimizer struct {
	Workers int
	Observe func(TierRun)
}

// Optimize orders stops with default Optimizer settings.
func Optimize(stops []domain.Stop, opts domain.Options) *domain.OptimizationResult {
	return Optimizer{}.Optimize(stops, opts)
}

// Optimize orders stops high, medium, low and measures the result.
//
// In strict mode every tier keeps its input order. Otherwise each non-empty
// tier is handed to the solver chosen by selectSolver; the tiers are
// independent and are solved concurrently. Options must already be valid.
func (o Optimizer) Optimize(stops []domain.Stop, opts domain.Options) *domain.OptimizationResult {
	start := time.Now()

	groups := PartitionByPriority(stops)
	ordered := make([][]domain.Stop, len(domain.Priorities))

	if opts.Mode == domain.ModeStrict {
		for i, p := range domain.Priorities {
			ordered[i] = groups[p]
		}
	} else {
		var wg sync.WaitGroup
		for i, p := range domain.Priorities {
			group := groups[p]
			if len(group) == 0 {
				ordered[i] = group
				continue
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				ordered[i] = o.orderTier(p, group, opts)
			}()
		}
		wg.Wait()
	}

	route := make([]domain.Stop, 0, len(stops))
	stats := make(map[domain.Priority]domain.GroupStat, len(domain.Priorities))
	for i, p := range domain.Priorities {
		route = append(route, ordered[i]...)
		stats[p] = domain.GroupStat{
			Count:      len(ordered[i]),
			DistanceKm: RouteDistanceKm(ordered[i]),
		}
	}

	return &domain.OptimizationResult{
		Route:           route,
		TotalDistanceKm: RouteDistanceKm(route),
		GroupStats:      stats,
		Elapsed:         time.Since(start),
	}
}

// orderTier reorders a single non-empty tier with the selected solver.
func (o Optimizer) orderTier(p domain.Priority, group []domain.Stop, opts domain.Options) []domain.Stop {
	started := time.Now()

	points := make([]domain.Coordinates, len(group))
	for i, s := range group {
		points[i] = s.Coords()
	}
	dist := DistanceMatrix(points)

	kind := selectSolver(len(group), opts)
	var idx []int
	switch kind {
	case exactSolver:
		idx = SolveExact(dist)
	case heuristicSolver:
		idx = solveHeuristic(dist, o.Workers)
	}

	out := make([]domain.Stop, len(idx))
	for k, i := range idx {
		out[k] = group[i]
	}

	if o.Observe != nil {
		o.Observe(TierRun{Priority: p, Solver: kind.String(), Size: len(group), Elapsed: time.Since(started)})
	}

	return out
}
