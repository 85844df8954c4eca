package domain

// Priority is the delivery tier a Stop belongs to.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists the tiers in the fixed order they are visited.
var Priorities = [...]Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Report whether p is one of the three known tiers.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Represents a single geo-located delivery stop.
// A Stop is immutable once received; the optimizer only borrows it for
// the duration of one call and never mutates it.
type Stop struct {
	ID       int
	Lat      float64
	Lon      float64
	Priority Priority
}

func (s Stop) Coords() Coordinates { return Coordinates{Lat: s.Lat, Lon: s.Lon} }
