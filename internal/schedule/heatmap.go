package schedule

import (
	"fmt"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/grid"
)

// CountMode 决定热力图统计的口径
type CountMode string

const (
	// CountAvailability 统计标记为空闲（含释放回来的时段）的用户数
	CountAvailability CountMode = "availability"
	// CountPresence 统计该时段有任意状态的用户数，用于名单在场热力图
	CountPresence CountMode = "presence"
)

func (m CountMode) IsValid() bool {
	switch m {
	case CountAvailability, CountPresence:
		return true
	default:
		return false
	}
}

func (m CountMode) matches(status domain.SlotStatus) bool {
	switch m {
	case CountAvailability:
		return status.CountsAsAvailable()
	case CountPresence:
		return true
	default:
		return false
	}
}

// HourRange 表示每天参与聚合的小时区间 [StartHour, EndHour)
type HourRange struct {
	StartHour int32
	EndHour   int32
}

func FullWeek() HourRange {
	return HourRange{StartHour: 0, EndHour: 24}
}

func (r HourRange) validate() error {
	if r.StartHour < 0 || r.EndHour > 24 || r.StartHour >= r.EndHour {
		return fmt.Errorf("无效的小时区间 [%d, %d)", r.StartHour, r.EndHour)
	}
	return nil
}

// Aggregate 把多个用户的空闲表聚合成每个格子的计数。
// 纯函数，没有隐藏状态；没有任何用户时 TotalCount 为 0，
// 由展示层把它画成"暂无数据"，这里不视为错误。
func Aggregate(grids []*grid.Grid, hourRange HourRange, mode CountMode) ([]domain.HeatmapCell, error) {
	if err := hourRange.validate(); err != nil {
		return nil, err
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("无效的统计口径 %q", mode)
	}

	total := int32(len(grids))
	cells := make([]domain.HeatmapCell, 0, 7*(hourRange.EndHour-hourRange.StartHour))

	for day := int32(0); day <= 6; day++ {
		for hour := hourRange.StartHour; hour < hourRange.EndHour; hour++ {
			count := int32(0)
			for _, g := range grids {
				if status, exists := g.Get(day, hour); exists && mode.matches(status) {
					count++
				}
			}

			cells = append(cells, domain.HeatmapCell{
				DayOfWeek:      day,
				Hour:           hour,
				AvailableCount: count,
				TotalCount:     total,
			})
		}
	}

	return cells, nil
}
