package dto

// PointIn is a stop as accepted and returned by the API.
type PointIn struct {
	ID       int     `json:"id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Priority string  `json:"priority"`
}

// OptionsIn carries optional overrides; nil fields fall back to the server defaults.
type OptionsIn struct {
	Mode      *string `json:"mode,omitempty"`
	Algorithm *string `json:"algorithm,omitempty"`
	DPLimit   *int    `json:"dp_limit,omitempty"`
}

type OptimizeRequest struct {
	Points  []PointIn  `json:"points"`
	Options *OptionsIn `json:"options,omitempty"`
}

// StoredOptimizeRequest is the optional body of a stored-batch optimization.
type StoredOptimizeRequest struct {
	Options *OptionsIn `json:"options,omitempty"`
}

type GroupStatsOut struct {
	Count    int     `json:"count"`
	Distance float64 `json:"distance"`
}

type OptimizeResponse struct {
	OrderedPoints []PointIn                `json:"ordered_points"`
	TotalDistance float64                  `json:"total_distance"`
	GroupStats    map[string]GroupStatsOut `json:"group_stats"`
	RuntimeMs     float64                  `json:"runtime_ms"`
}
