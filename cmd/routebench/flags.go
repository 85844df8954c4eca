package main

import (
	"fmt"
	"strings"

	"smart-route-planner/internal/domain"
)

// algorithmFlags collects repeated -algorithm values.
type algorithmFlags []domain.Algorithm

func (a *algorithmFlags) String() string {
	return fmt.Sprintf("%v", *a)
}

func (a *algorithmFlags) Set(value string) error {
	algo := domain.Algorithm(strings.ToLower(strings.TrimSpace(value)))
	if !algo.Valid() {
		return fmt.Errorf("unknown algorithm %q (want dp, heuristic or auto)", value)
	}
	*a = append(*a, algo)
	return nil
}
