package schedule

import (
	"testing"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/grid"
)

func cellAt(t *testing.T, cells []domain.HeatmapCell, day, hour int32) domain.HeatmapCell {
	t.Helper()
	for _, cell := range cells {
		if cell.DayOfWeek == day && cell.Hour == hour {
			return cell
		}
	}
	t.Fatalf("聚合结果中找不到格子 (%d, %d)", day, hour)
	return domain.HeatmapCell{}
}

// 对应场景：三个用户中有两个在周一 18 点空闲
func TestAggregateAvailability(t *testing.T) {
	g1 := gridWith(t, domain.TimeSlot{DayOfWeek: 1, Hour: 18, Status: domain.SlotAvailable})
	g2 := gridWith(t, domain.TimeSlot{DayOfWeek: 1, Hour: 18, Status: domain.SlotFreed})
	g3 := gridWith(t, domain.TimeSlot{DayOfWeek: 1, Hour: 18, Status: domain.SlotCommitted})

	cells, err := Aggregate([]*grid.Grid{g1, g2, g3}, FullWeek(), CountAvailability)
	if err != nil {
		t.Fatalf("聚合失败: %v", err)
	}

	cell := cellAt(t, cells, 1, 18)
	if cell.AvailableCount != 2 || cell.TotalCount != 3 {
		t.Errorf("期望 2/3，实际为 %d/%d", cell.AvailableCount, cell.TotalCount)
	}

	empty := cellAt(t, cells, 1, 19)
	if empty.AvailableCount != 0 || empty.TotalCount != 3 {
		t.Errorf("没人空闲的格子期望 0/3，实际为 %d/%d", empty.AvailableCount, empty.TotalCount)
	}
}

func TestAggregatePresenceCountsAnyStatus(t *testing.T) {
	g1 := gridWith(t, domain.TimeSlot{DayOfWeek: 1, Hour: 18, Status: domain.SlotCommitted})
	g2 := gridWith(t, domain.TimeSlot{DayOfWeek: 1, Hour: 18, Status: domain.SlotBlocked})
	g3 := gridWith(t)

	cells, err := Aggregate([]*grid.Grid{g1, g2, g3}, FullWeek(), CountPresence)
	if err != nil {
		t.Fatalf("聚合失败: %v", err)
	}

	cell := cellAt(t, cells, 1, 18)
	if cell.AvailableCount != 2 || cell.TotalCount != 3 {
		t.Errorf("在场口径期望 2/3，实际为 %d/%d", cell.AvailableCount, cell.TotalCount)
	}
}

func TestAggregateEmptyGridsIsNoData(t *testing.T) {
	cells, err := Aggregate(nil, FullWeek(), CountAvailability)
	if err != nil {
		t.Fatalf("没有用户时聚合不应该报错: %v", err)
	}

	if len(cells) != 7*24 {
		t.Fatalf("期望 %d 个格子，实际为 %d", 7*24, len(cells))
	}
	for _, cell := range cells {
		if cell.AvailableCount != 0 || cell.TotalCount != 0 {
			t.Fatalf("没有用户时所有格子都应该是 0/0，实际为 %d/%d", cell.AvailableCount, cell.TotalCount)
		}
	}
}

func TestAggregateInvariantAndRange(t *testing.T) {
	g1 := gridWith(t,
		domain.TimeSlot{DayOfWeek: 0, Hour: 18, Status: domain.SlotAvailable},
		domain.TimeSlot{DayOfWeek: 3, Hour: 20, Status: domain.SlotAvailable},
	)
	g2 := gridWith(t, domain.TimeSlot{DayOfWeek: 3, Hour: 20, Status: domain.SlotAvailable})

	hourRange := HourRange{StartHour: 18, EndHour: 22}
	cells, err := Aggregate([]*grid.Grid{g1, g2}, hourRange, CountAvailability)
	if err != nil {
		t.Fatalf("聚合失败: %v", err)
	}

	if len(cells) != 7*4 {
		t.Fatalf("期望 %d 个格子，实际为 %d", 7*4, len(cells))
	}
	for _, cell := range cells {
		if cell.Hour < hourRange.StartHour || cell.Hour >= hourRange.EndHour {
			t.Fatalf("出现了区间外的小时 %d", cell.Hour)
		}
		if cell.AvailableCount < 0 || cell.AvailableCount > cell.TotalCount {
			t.Fatalf("违反不变量 0 <= %d <= %d", cell.AvailableCount, cell.TotalCount)
		}
	}
}

func TestAggregateRejectsInvalidInput(t *testing.T) {
	if _, err := Aggregate(nil, HourRange{StartHour: 10, EndHour: 8}, CountAvailability); err == nil {
		t.Error("倒置的小时区间应该报错")
	}
	if _, err := Aggregate(nil, FullWeek(), CountMode("raw")); err == nil {
		t.Error("未定义的统计口径应该报错")
	}
}
