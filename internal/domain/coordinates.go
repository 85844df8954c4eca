package domain

// Immutable geographic coordinates in degrees (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Report whether the coordinates fall inside the valid WGS84 degree ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}
