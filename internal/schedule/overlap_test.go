package schedule

import (
	"testing"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/grid"
)

func gridWith(t *testing.T, slots ...domain.TimeSlot) *grid.Grid {
	t.Helper()
	g, err := grid.FromSlots(slots)
	if err != nil {
		t.Fatalf("构建空闲表失败: %v", err)
	}
	return g
}

// 对应场景：活动在周二 20:00-23:00，空闲表在 (2, 21) 有空闲
func TestOverlapsHit(t *testing.T) {
	g := gridWith(t, domain.TimeSlot{DayOfWeek: 2, Hour: 21, Status: domain.SlotAvailable})
	block := domain.EventBlock{DayOfWeek: 2, StartHour: 20, EndHour: 23}

	if !Overlaps(block, g, 0) {
		t.Error("活动时段覆盖了空闲小时，应该判定为重合")
	}
}

// 对应场景：空闲只在活动开始前一小时和次日零点，不应该误判
func TestOverlapsNoAdjacentLeakage(t *testing.T) {
	g := gridWith(t,
		domain.TimeSlot{DayOfWeek: 2, Hour: 19, Status: domain.SlotAvailable},
		domain.TimeSlot{DayOfWeek: 3, Hour: 0, Status: domain.SlotAvailable},
	)
	block := domain.EventBlock{DayOfWeek: 2, StartHour: 20, EndHour: 23}

	if Overlaps(block, g, 0) {
		t.Error("相邻小时的空闲不应该被判定为重合")
	}
}

func TestOverlapsSubHourStartRoundsUp(t *testing.T) {
	// 20:30 开场的活动，第一个完整小时是 21 点
	block := domain.EventBlock{DayOfWeek: 1, StartHour: 20.5, EndHour: 22}

	onlyAt20 := gridWith(t, domain.TimeSlot{DayOfWeek: 1, Hour: 20, Status: domain.SlotAvailable})
	if Overlaps(block, onlyAt20, 0) {
		t.Error("开场所在的不完整小时不应该被计入")
	}

	at21 := gridWith(t, domain.TimeSlot{DayOfWeek: 1, Hour: 21, Status: domain.SlotAvailable})
	if !Overlaps(block, at21, 0) {
		t.Error("向上取整后的第一个完整小时应该被计入")
	}
}

func TestOverlapsEndHourExclusive(t *testing.T) {
	g := gridWith(t, domain.TimeSlot{DayOfWeek: 4, Hour: 23, Status: domain.SlotAvailable})
	block := domain.EventBlock{DayOfWeek: 4, StartHour: 20, EndHour: 23}

	if Overlaps(block, g, 0) {
		t.Error("结束时间所在的小时不应该被计入")
	}
}

func TestOverlapsIgnoresNonAvailableStatus(t *testing.T) {
	g := gridWith(t,
		domain.TimeSlot{DayOfWeek: 2, Hour: 21, Status: domain.SlotCommitted},
		domain.TimeSlot{DayOfWeek: 2, Hour: 22, Status: domain.SlotBlocked},
	)
	block := domain.EventBlock{DayOfWeek: 2, StartHour: 20, EndHour: 23}

	if Overlaps(block, g, 0) {
		t.Error("默认口径只统计空闲状态")
	}
}

func TestOverlapsDayOriginOffset(t *testing.T) {
	// 活动时间段以星期一为 0，空闲表以星期日为 0：
	// 活动的周一（0）对应空闲表的第 1 天
	g := gridWith(t, domain.TimeSlot{DayOfWeek: 1, Hour: 20, Status: domain.SlotAvailable})
	block := domain.EventBlock{DayOfWeek: 0, StartHour: 19, EndHour: 22}

	if !Overlaps(block, g, EventToGridDayOffset) {
		t.Error("经过起点换算后应该判定为重合")
	}
	if Overlaps(block, g, 0) {
		t.Error("不做起点换算时不应该重合")
	}

	// 周日（活动编号 6）应该换算到空闲表的第 0 天
	sunday := domain.EventBlock{DayOfWeek: 6, StartHour: 19, EndHour: 22}
	sundayGrid := gridWith(t, domain.TimeSlot{DayOfWeek: 0, Hour: 20, Status: domain.SlotAvailable})
	if !Overlaps(sunday, sundayGrid, EventToGridDayOffset) {
		t.Error("跨周回绕的起点换算不正确")
	}
}

func TestOverlapsFuncCustomPredicate(t *testing.T) {
	block := domain.EventBlock{DayOfWeek: 0, StartHour: 8, EndHour: 10}

	calls := 0
	hit := OverlapsFunc(block, 0, func(day, hour int32) bool {
		calls++
		return hour == 8
	})

	if !hit {
		t.Error("自定义判定函数命中时应该返回 true")
	}
	if calls != 1 {
		t.Errorf("命中后应该立即短路，期望调用 1 次，实际为 %d", calls)
	}
}

func TestPartitionByAvailability(t *testing.T) {
	g := gridWith(t, domain.TimeSlot{DayOfWeek: 2, Hour: 20, Status: domain.SlotAvailable})

	matchA := &domain.Event{ID: 1, Blocks: []domain.EventBlock{{DayOfWeek: 2, StartHour: 19, EndHour: 22}}}
	miss := &domain.Event{ID: 2, Blocks: []domain.EventBlock{{DayOfWeek: 5, StartHour: 19, EndHour: 22}}}
	matchB := &domain.Event{ID: 3, Blocks: []domain.EventBlock{{DayOfWeek: 2, StartHour: 20, EndHour: 21}}}

	matching, rest := PartitionByAvailability([]*domain.Event{matchA, miss, matchB}, g, 0)

	if len(matching) != 2 || matching[0].ID != 1 || matching[1].ID != 3 {
		t.Errorf("匹配组应该按原顺序包含活动 1 和 3，实际为 %v", eventIDs(matching))
	}
	if len(rest) != 1 || rest[0].ID != 2 {
		t.Errorf("不匹配组应该只包含活动 2，实际为 %v", eventIDs(rest))
	}
}

func eventIDs(events []*domain.Event) []int64 {
	ids := make([]int64, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
	}
	return ids
}
