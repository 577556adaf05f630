package grid

import (
	"math"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
)

// WeekClock 表示"现在"落在一周网格中的位置
type WeekClock struct {
	TodayIndex  int32   // 0 到 6
	CurrentHour float64 // 允许小数，例如 14.5 表示 14:30
}

// IsPast 判断 (day, hour) 是否已经滚过去了
func (c WeekClock) IsPast(day, hour int32) bool {
	if day < c.TodayIndex {
		return true
	}
	return day == c.TodayIndex && hour < int32(math.Floor(c.CurrentHour))
}

// Projector 解决滚动周视图下某个格子应该显示哪份数据：
// 对于已经滚过去的格子，如果提供了下一周期的数据集，则返回下一周期的值，
// 除非该格子在本次会话中被编辑过（本地修改优先）；
// 没有提供下一周期数据集的调用方总是拿到当前空闲表的值。
type Projector struct {
	Current *Grid
	Next    *Grid // 可以为 nil，表示非滚动调用方
	Clock   WeekClock
	Dirty   func(day, hour int32) bool // 可以为 nil
}

func (p *Projector) Resolve(day, hour int32) (domain.SlotStatus, bool) {
	if p.Next == nil || !p.Clock.IsPast(day, hour) {
		return p.Current.Get(day, hour)
	}
	if p.Dirty != nil && p.Dirty(day, hour) {
		return p.Current.Get(day, hour)
	}
	return p.Next.Get(day, hour)
}

// ResolveAll 对一周内每个格子做投影，返回所有存在的格子
func (p *Projector) ResolveAll() []domain.TimeSlot {
	slots := make([]domain.TimeSlot, 0)
	for day := int32(0); day <= 6; day++ {
		for hour := int32(0); hour <= 23; hour++ {
			if status, exists := p.Resolve(day, hour); exists {
				slots = append(slots, domain.TimeSlot{
					DayOfWeek: day,
					Hour:      hour,
					Status:    status,
				})
			}
		}
	}
	return slots
}
