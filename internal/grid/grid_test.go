package grid

import (
	"errors"
	"testing"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
)

func TestUpsertAndGet(t *testing.T) {
	g := New()

	if err := g.Upsert(2, 21, domain.SlotAvailable); err != nil {
		t.Fatalf("写入空闲格子不应该失败: %v", err)
	}

	status, exists := g.Get(2, 21)
	if !exists {
		t.Fatal("写入后应该能读到格子")
	}
	if status != domain.SlotAvailable {
		t.Errorf("期望状态为 %s，实际为 %s", domain.SlotAvailable, status)
	}

	if _, exists := g.Get(2, 22); exists {
		t.Error("没写过的格子不应该存在")
	}
}

func TestUpsertRejectsLockedStatus(t *testing.T) {
	g := New()

	for _, status := range []domain.SlotStatus{domain.SlotCommitted, domain.SlotBlocked} {
		if err := g.Upsert(0, 10, status); !errors.Is(err, ErrSlotLocked) {
			t.Errorf("通过编辑接口写入 %s 应该返回 ErrSlotLocked，实际为 %v", status, err)
		}
	}
}

func TestUpsertRejectsOverwritingLockedSlot(t *testing.T) {
	g := New()
	if err := g.Restore(domain.TimeSlot{DayOfWeek: 3, Hour: 20, Status: domain.SlotCommitted}); err != nil {
		t.Fatalf("载入已确认格子失败: %v", err)
	}

	if err := g.Upsert(3, 20, domain.SlotAvailable); !errors.Is(err, ErrSlotLocked) {
		t.Errorf("覆盖已确认格子应该返回 ErrSlotLocked，实际为 %v", err)
	}
	if err := g.Remove(3, 20); !errors.Is(err, ErrSlotLocked) {
		t.Errorf("删除已确认格子应该返回 ErrSlotLocked，实际为 %v", err)
	}

	status, exists := g.Get(3, 20)
	if !exists || status != domain.SlotCommitted {
		t.Error("被拒绝的写入不应该改变格子状态")
	}
}

func TestUpsertRejectsOutOfRange(t *testing.T) {
	g := New()

	cases := []struct {
		day  int32
		hour int32
	}{
		{-1, 10},
		{7, 10},
		{3, -1},
		{3, 24},
	}

	for _, c := range cases {
		if err := g.Upsert(c.day, c.hour, domain.SlotAvailable); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("(%d, %d) 应该返回 ErrOutOfRange，实际为 %v", c.day, c.hour, err)
		}
	}
}

func TestRemoveFreedSlot(t *testing.T) {
	g := New()
	if err := g.Upsert(5, 18, domain.SlotFreed); err != nil {
		t.Fatalf("写入释放状态失败: %v", err)
	}

	if err := g.Remove(5, 18); err != nil {
		t.Fatalf("释放状态的格子应该允许删除: %v", err)
	}
	if _, exists := g.Get(5, 18); exists {
		t.Error("删除后格子不应该存在")
	}
}

func TestFromSlotsKeepsOneSlotPerKey(t *testing.T) {
	g, err := FromSlots([]domain.TimeSlot{
		{DayOfWeek: 1, Hour: 18, Status: domain.SlotAvailable},
		{DayOfWeek: 1, Hour: 18, Status: domain.SlotCommitted},
		{DayOfWeek: 1, Hour: 19, Status: domain.SlotAvailable},
	})
	if err != nil {
		t.Fatalf("构建空闲表失败: %v", err)
	}

	if g.Len() != 2 {
		t.Errorf("同一个键只应该保留一个格子，期望 2 个格子，实际为 %d", g.Len())
	}
	if status, _ := g.Get(1, 18); status != domain.SlotCommitted {
		t.Errorf("后写入的状态应该生效，期望 %s，实际为 %s", domain.SlotCommitted, status)
	}
}

func TestSlotsReturnsSortedOrder(t *testing.T) {
	g := New()
	_ = g.Upsert(6, 3, domain.SlotAvailable)
	_ = g.Upsert(0, 12, domain.SlotAvailable)
	_ = g.Upsert(0, 5, domain.SlotFreed)

	slots := g.Slots()
	if len(slots) != 3 {
		t.Fatalf("期望 3 个格子，实际为 %d", len(slots))
	}

	expected := []Key{{0, 5}, {0, 12}, {6, 3}}
	for i, slot := range slots {
		if slot.DayOfWeek != expected[i].Day || slot.Hour != expected[i].Hour {
			t.Errorf("第 %d 个格子期望为 (%d, %d)，实际为 (%d, %d)", i, expected[i].Day, expected[i].Hour, slot.DayOfWeek, slot.Hour)
		}
	}
}
