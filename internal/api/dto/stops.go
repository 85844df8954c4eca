package dto

type ListStopsResponse struct {
	Batch string    `json:"batch"`
	Stops []PointIn `json:"stops"`
}
