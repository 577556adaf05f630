package schedule

import (
	"math"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/grid"
)

// 活动时间段的 DayOfWeek 以星期一为 0，空闲表以星期日为 0，
// 两种编号之间的换算由调用方通过 dayOriginOffset 显式传入，
// 引擎本身不假设任何一种起点。
const EventToGridDayOffset int32 = 1

// HourSpan 把活动时间段换算到空闲表的坐标系：
// 返回换算后的天编号，以及从开始时间向上取整到整点后覆盖的所有完整小时
func HourSpan(block domain.EventBlock, dayOriginOffset int32) (int32, []int32) {
	day := ((block.DayOfWeek+dayOriginOffset)%7 + 7) % 7

	hours := make([]int32, 0)
	for hour := int32(math.Ceil(block.StartHour)); float64(hour) < block.EndHour; hour++ {
		if hour < 0 || hour > 23 {
			continue
		}
		hours = append(hours, hour)
	}

	return day, hours
}

// OverlapsFunc 判断某个活动时间段是否命中至少一个整点小时。
// 游标从开始时间向上取整到整点，逐小时推进到结束时间为止，
// 命中第一个小时就返回，复杂度与活动时长成正比。
func OverlapsFunc(block domain.EventBlock, dayOriginOffset int32, isAvailable func(day, hour int32) bool) bool {
	day, hours := HourSpan(block, dayOriginOffset)

	for _, hour := range hours {
		if isAvailable(day, hour) {
			return true
		}
	}

	return false
}

// Overlaps 判断活动时间段是否落在空闲表中标记为空闲的小时内
func Overlaps(block domain.EventBlock, g *grid.Grid, dayOriginOffset int32) bool {
	return OverlapsFunc(block, dayOriginOffset, func(day, hour int32) bool {
		status, exists := g.Get(day, hour)
		return exists && status == domain.SlotAvailable
	})
}

// EventMatches 判断活动的任意一个时间段是否和空闲表重合
func EventMatches(event *domain.Event, g *grid.Grid, dayOriginOffset int32) bool {
	for _, block := range event.Blocks {
		if Overlaps(block, g, dayOriginOffset) {
			return true
		}
	}
	return false
}

// PartitionByAvailability 把活动列表稳定地分成两组：
// 和空闲表匹配的排在前面，不匹配的排在后面，组内保持原有顺序
func PartitionByAvailability(events []*domain.Event, g *grid.Grid, dayOriginOffset int32) (matching []*domain.Event, rest []*domain.Event) {
	matching = make([]*domain.Event, 0, len(events))
	rest = make([]*domain.Event, 0, len(events))

	for _, event := range events {
		if EventMatches(event, g, dayOriginOffset) {
			matching = append(matching, event)
		} else {
			rest = append(rest, event)
		}
	}

	return matching, rest
}
