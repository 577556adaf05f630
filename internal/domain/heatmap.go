package domain

// HeatmapCell 是聚合出来的派生数据，不落库
type HeatmapCell struct {
	DayOfWeek      int32 `json:"dayOfWeek"`
	Hour           int32 `json:"hour"`
	AvailableCount int32 `json:"availableCount"`
	TotalCount     int32 `json:"totalCount"`
}
