package grid

import (
	"testing"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
)

func TestPointerDownOnEmptyCellStartsPaint(t *testing.T) {
	g := New()
	p := NewPainter(g)

	if !p.PointerDown(1, 18) {
		t.Fatal("按在空白格子上应该允许开始拖拽")
	}
	if p.Mode() != ModePaint {
		t.Errorf("期望进入绘制模式，实际为 %s", p.Mode())
	}
	if status, exists := g.Get(1, 18); !exists || status != domain.SlotAvailable {
		t.Error("按下的格子应该被立即画成空闲")
	}
}

func TestPointerDownOnAvailableCellStartsErase(t *testing.T) {
	g := New()
	_ = g.Upsert(1, 18, domain.SlotAvailable)
	p := NewPainter(g)

	if !p.PointerDown(1, 18) {
		t.Fatal("按在空闲格子上应该允许开始拖拽")
	}
	if p.Mode() != ModeErase {
		t.Errorf("期望进入擦除模式，实际为 %s", p.Mode())
	}
	if _, exists := g.Get(1, 18); exists {
		t.Error("按下的空闲格子应该被立即擦掉")
	}
}

func TestPointerDownOnLockedCellRefused(t *testing.T) {
	g := New()
	_ = g.Restore(domain.TimeSlot{DayOfWeek: 2, Hour: 20, Status: domain.SlotCommitted})
	_ = g.Restore(domain.TimeSlot{DayOfWeek: 2, Hour: 21, Status: domain.SlotBlocked})
	p := NewPainter(g)

	if p.PointerDown(2, 20) {
		t.Error("按在已确认格子上应该拒绝开始拖拽")
	}
	if p.PointerDown(2, 21) {
		t.Error("按在锁定格子上应该拒绝开始拖拽")
	}
	if p.Dragging() {
		t.Error("拒绝之后状态机应该停留在 idle")
	}
}

// 对应场景：从空闲格子开始拖拽进入擦除模式，扫过两个空闲格子和
// 一个已确认格子，只有两个空闲格子被擦掉
func TestEraseDragSkipsCommittedCell(t *testing.T) {
	g := New()
	_ = g.Upsert(2, 19, domain.SlotAvailable)
	_ = g.Upsert(2, 21, domain.SlotAvailable)
	_ = g.Restore(domain.TimeSlot{DayOfWeek: 2, Hour: 20, Status: domain.SlotCommitted})
	p := NewPainter(g)

	if !p.PointerDown(2, 19) {
		t.Fatal("开始拖拽失败")
	}
	p.PointerEnter(2, 20)
	p.PointerEnter(2, 21)
	p.PointerUp()

	if _, exists := g.Get(2, 19); exists {
		t.Error("第一个空闲格子应该被擦掉")
	}
	if _, exists := g.Get(2, 21); exists {
		t.Error("第二个空闲格子应该被擦掉")
	}
	if status, exists := g.Get(2, 20); !exists || status != domain.SlotCommitted {
		t.Error("已确认格子不应该被任何拖拽修改")
	}
}

func TestEraseNeverRemovesFreedCell(t *testing.T) {
	g := New()
	_ = g.Upsert(4, 10, domain.SlotAvailable)
	_ = g.Upsert(4, 11, domain.SlotFreed)
	p := NewPainter(g)

	if !p.PointerDown(4, 10) {
		t.Fatal("开始拖拽失败")
	}
	p.PointerEnter(4, 11)
	p.PointerUp()

	if status, exists := g.Get(4, 11); !exists || status != domain.SlotFreed {
		t.Error("擦除模式不应该删掉释放状态的格子")
	}
}

func TestPaintIsIdempotent(t *testing.T) {
	g := New()
	p := NewPainter(g)

	if !p.PointerDown(3, 8) {
		t.Fatal("开始拖拽失败")
	}
	for i := 0; i < 5; i++ {
		p.PointerEnter(3, 8)
	}
	p.PointerUp()

	if g.Len() != 1 {
		t.Errorf("重复绘制同一个格子应该和画一次的结果相同，期望 1 个格子，实际为 %d", g.Len())
	}
	if status, _ := g.Get(3, 8); status != domain.SlotAvailable {
		t.Errorf("期望状态为 %s，实际为 %s", domain.SlotAvailable, status)
	}
}

func TestPaintKeepsFreedStatus(t *testing.T) {
	g := New()
	_ = g.Upsert(0, 9, domain.SlotFreed)
	p := NewPainter(g)

	// 按在释放状态的格子上不是擦除（状态不是 available），而是绘制
	if !p.PointerDown(0, 9) {
		t.Fatal("开始拖拽失败")
	}
	p.PointerUp()

	if status, _ := g.Get(0, 9); status != domain.SlotFreed {
		t.Errorf("绘制已存在的格子应该保持原状态 %s，实际为 %s", domain.SlotFreed, status)
	}
}

func TestPointerEnterIgnoredWhenIdle(t *testing.T) {
	g := New()
	p := NewPainter(g)

	p.PointerEnter(1, 1)

	if g.Len() != 0 {
		t.Error("没有拖拽时进入格子不应该产生任何修改")
	}
	if p.IsDirty(1, 1) {
		t.Error("没有拖拽时进入格子不应该标脏")
	}
}

func TestDirtyTracking(t *testing.T) {
	g := New()
	_ = g.Restore(domain.TimeSlot{DayOfWeek: 5, Hour: 13, Status: domain.SlotCommitted})
	p := NewPainter(g)

	if !p.PointerDown(5, 12) {
		t.Fatal("开始拖拽失败")
	}
	p.PointerEnter(5, 13)
	p.PointerEnter(5, 14)
	p.PointerUp()

	if !p.IsDirty(5, 12) || !p.IsDirty(5, 14) {
		t.Error("拖拽触碰过的可编辑格子应该被标脏")
	}
	if p.IsDirty(5, 13) {
		t.Error("锁定格子不是可触达的修改目标，不应该被标脏")
	}

	keys := p.DirtyKeys()
	if len(keys) != 2 || keys[0] != (Key{5, 12}) || keys[1] != (Key{5, 14}) {
		t.Errorf("脏格子列表应该有序，实际为 %v", keys)
	}
}

func TestCancelKeepsAppliedMutations(t *testing.T) {
	g := New()
	p := NewPainter(g)

	if !p.PointerDown(6, 20) {
		t.Fatal("开始拖拽失败")
	}
	p.PointerEnter(6, 21)
	p.Cancel()

	if p.Dragging() {
		t.Error("取消后状态机应该回到 idle")
	}
	if g.Len() != 2 {
		t.Errorf("取消拖拽不应该回滚已经落下的修改，期望 2 个格子，实际为 %d", g.Len())
	}

	// 取消之后不应该再接受进入事件
	p.PointerEnter(6, 22)
	if g.Len() != 2 {
		t.Error("取消后的进入事件不应该产生修改")
	}
}

func TestRevertRestoresPreGestureValue(t *testing.T) {
	g := New()
	_ = g.Upsert(1, 10, domain.SlotAvailable)
	p := NewPainter(g)

	// 擦掉已有格子再画一个新格子，然后分别回滚
	if !p.PointerDown(1, 10) {
		t.Fatal("开始拖拽失败")
	}
	p.PointerUp()

	if !p.PointerDown(1, 11) {
		t.Fatal("开始拖拽失败")
	}
	p.PointerUp()

	p.Revert(1, 10)
	if status, exists := g.Get(1, 10); !exists || status != domain.SlotAvailable {
		t.Error("回滚后被擦掉的格子应该恢复为空闲")
	}

	p.Revert(1, 11)
	if _, exists := g.Get(1, 11); exists {
		t.Error("回滚后新画的格子应该被删掉")
	}

	if p.IsDirty(1, 10) || p.IsDirty(1, 11) {
		t.Error("回滚后脏标记应该被清除")
	}
}
