package domain

import "fmt"

// Mode controls whether the solvers run at all.
type Mode string

const (
	// ModeStrict keeps every tier in input order.
	ModeStrict    Mode = "strict"
	ModeOptimized Mode = "optimized"
)

// Algorithm selects the solver used for each non-empty tier.
type Algorithm string

const (
	AlgorithmDP        Algorithm = "dp"
	AlgorithmHeuristic Algorithm = "heuristic"
	AlgorithmAuto      Algorithm = "auto"
)

const (
	MinDPLimit     = 1
	MaxDPLimit     = 16
	DefaultDPLimit = 12
)

// Options tune a single optimization call.
//
// DPLimit is the largest tier size for which AlgorithmAuto picks the exact
// solver. It must already be within [MinDPLimit, MaxDPLimit] when handed to
// the optimizer; the optimizer does not re-check it.
type Options struct {
	Mode      Mode
	Algorithm Algorithm
	DPLimit   int
}

func DefaultOptions() Options {
	return Options{
		Mode:      ModeOptimized,
		Algorithm: AlgorithmAuto,
		DPLimit:   DefaultDPLimit,
	}
}

func (m Mode) Valid() bool {
	return m == ModeStrict || m == ModeOptimized
}

func (a Algorithm) Valid() bool {
	return a == AlgorithmDP || a == AlgorithmHeuristic || a == AlgorithmAuto
}

// Validate checks every option against its closed set or range.
func (o Options) Validate() error {
	if !o.Mode.Valid() {
		return fmt.Errorf("mode must be one of strict, optimized (got %q)", o.Mode)
	}
	if !o.Algorithm.Valid() {
		return fmt.Errorf("algorithm must be one of dp, heuristic, auto (got %q)", o.Algorithm)
	}
	if o.DPLimit < MinDPLimit || o.DPLimit > MaxDPLimit {
		return fmt.Errorf("dp_limit must be between %d and %d", MinDPLimit, MaxDPLimit)
	}
	return nil
}
