package services

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"smart-route-planner/internal/domain"
	"smart-route-planner/internal/metrics"
	"smart-route-planner/internal/platform/obs"
	"smart-route-planner/internal/ports"
)

var (
	// ErrBatchNotFound is returned when a stored batch has no stops.
	ErrBatchNotFound = errors.New("batch not found")
	// ErrStorageDisabled is returned when batch operations run without a repository.
	ErrStorageDisabled = errors.New("stop storage is not configured")
)

// Planner fronts the optimizer with result caching, stop storage and metrics.
// Cache and Repo are optional. MaxStops caps the stops per request; zero
// disables the cap.
type Planner struct {
	Optimizer Optimizer
	Cache     ports.ResultCache
	Repo      ports.StopRepository
	MaxStops  int
}

func NewPlanner(workers int, cache ports.ResultCache, repo ports.StopRepository) *Planner {
	return &Planner{
		Optimizer: Optimizer{Workers: workers, Observe: recordTierRun},
		Cache:     cache,
		Repo:      repo,
	}
}

func recordTierRun(r TierRun) {
	metrics.TierSolves.WithLabelValues(r.Solver, string(r.Priority)).Inc()
	metrics.TierSolveDuration.WithLabelValues(r.Solver).Observe(r.Elapsed.Seconds())
	metrics.TierSize.WithLabelValues(r.Solver).Observe(float64(r.Size))
}

// Optimize returns the ordered route for validated stops and options.
//
// Requests over MaxStops, or asking for dp on a tier larger than DPLimit, are
// rejected with ErrTooManyStops or ErrTierTooLarge before any work is done.
// Identical requests are answered from the cache when one is configured.
// Cache failures are logged and never fail the request.
func (p *Planner) Optimize(
	ctx context.Context,
	stops []domain.Stop,
	opts domain.Options,
) (_ *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "planner.Optimize")(&err)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	if err := checkStopCount(stops, p.MaxStops); err != nil {
		return nil, err
	}
	if err := CheckTierSizes(stops, opts); err != nil {
		return nil, err
	}

	start := time.Now()
	key := Fingerprint(stops, opts)

	if p.Cache != nil {
		cached, ok, err := p.Cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.CacheLookups.WithLabelValues("error").Inc()
			log.Printf("req_id=%s op=planner.cache.Get key=%s err=%v", obs.RequestID(ctx), key, err)
		case ok:
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			cached.Elapsed = time.Since(start)
			return cached, nil
		default:
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	res := p.Optimizer.Optimize(stops, opts)
	metrics.OptimizeRuns.WithLabelValues(string(opts.Mode), string(opts.Algorithm)).Inc()

	if p.Cache != nil {
		if err := p.Cache.Put(ctx, key, res); err != nil {
			log.Printf("req_id=%s op=planner.cache.Put key=%s err=%v", obs.RequestID(ctx), key, err)
		}
	}

	return res, nil
}

// OptimizeBatch loads a stored batch and optimizes it.
func (p *Planner) OptimizeBatch(
	ctx context.Context,
	batchID string,
	opts domain.Options,
) (*domain.OptimizationResult, error) {
	stops, err := p.ListBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	res, err := p.Optimize(ctx, stops, opts)
	if err != nil {
		return nil, fmt.Errorf("optimize batch %q: %w", batchID, err)
	}
	return res, nil
}

// ListBatch returns the stops of a stored batch.
func (p *Planner) ListBatch(ctx context.Context, batchID string) ([]domain.Stop, error) {
	if p.Repo == nil {
		return nil, ErrStorageDisabled
	}

	batchID = strings.TrimSpace(batchID)
	if batchID == "" {
		return nil, errors.New("list batch: batch id must not be empty")
	}

	stops, err := p.Repo.ListStops(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch %q: %w", batchID, err)
	}
	if len(stops) == 0 {
		return nil, fmt.Errorf("list batch %q: %w", batchID, ErrBatchNotFound)
	}

	return stops, nil
}

// Fingerprint derives the cache key for a request. Stop order is significant:
// strict mode and tie-breaking both depend on it.
func Fingerprint(stops []domain.Stop, opts domain.Options) string {
	d := xxhash.New()
	var buf [8]byte

	writeUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}

	_, _ = d.WriteString(string(opts.Mode))
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(string(opts.Algorithm))
	_, _ = d.WriteString("|")
	writeUint(uint64(opts.DPLimit))

	for _, s := range stops {
		writeUint(uint64(int64(s.ID)))
		writeUint(math.Float64bits(s.Lat))
		writeUint(math.Float64bits(s.Lon))
		_, _ = d.WriteString(string(s.Priority))
		_, _ = d.WriteString(";")
	}

	return "optimize:" + strconv.FormatUint(d.Sum64(), 16)
}
