package grid

import (
	"sort"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
)

// Mode 表示一次拖拽手势是在画格子还是在擦格子
type Mode string

const (
	ModePaint Mode = "paint"
	ModeErase Mode = "erase"
)

type dragState int

const (
	stateIdle dragState = iota
	stateDragging
)

// Painter 是叠在空闲表上的拖拽编辑状态机，只有 idle 和 dragging 两个状态。
// 按下时如果落在锁定格子上则拒绝进入拖拽；拖拽过程中画格子是幂等的，
// 擦格子只会删掉状态恰好为 available 的格子，因此锁定格子在任何拖拽
// 路径下都不可能被修改。
type Painter struct {
	grid  *Grid
	state dragState
	mode  Mode

	// 本次会话中被手势触碰过的格子，以及它们在手势开始前的状态，
	// 用于滚动周投影和保存失败时的回滚
	dirty  map[Key]bool
	before map[Key]*domain.SlotStatus
}

func NewPainter(g *Grid) *Painter {
	return &Painter{
		grid:   g,
		state:  stateIdle,
		dirty:  make(map[Key]bool),
		before: make(map[Key]*domain.SlotStatus),
	}
}

// PointerDown 在 (day, hour) 上按下，尝试开始一次拖拽。
// 落在锁定格子上时拒绝开始并返回 false。
func (p *Painter) PointerDown(day, hour int32) bool {
	if p.state != stateIdle {
		return false
	}

	key := Key{Day: day, Hour: hour}
	if !key.inRange() {
		return false
	}

	status, exists := p.grid.Get(day, hour)
	if exists && status.IsLocked() {
		return false
	}

	// 按在空闲格子上是擦除，其余情况是绘制
	if exists && status == domain.SlotAvailable {
		p.mode = ModeErase
	} else {
		p.mode = ModePaint
	}
	p.state = stateDragging

	p.apply(key)
	return true
}

// PointerEnter 在拖拽过程中进入一个新的格子
func (p *Painter) PointerEnter(day, hour int32) {
	if p.state != stateDragging {
		return
	}

	key := Key{Day: day, Hour: hour}
	if !key.inRange() {
		return
	}

	p.apply(key)
}

// PointerUp 结束拖拽，指针离开网格区域时也应调用
func (p *Painter) PointerUp() {
	p.state = stateIdle
}

// Cancel 在界面被销毁等场景下放弃当前拖拽。
// 已经落到空闲表上的修改保持不变，不会产生额外的副作用。
func (p *Painter) Cancel() {
	p.state = stateIdle
}

func (p *Painter) Dragging() bool {
	return p.state == stateDragging
}

func (p *Painter) Mode() Mode {
	return p.mode
}

func (p *Painter) apply(key Key) {
	status, exists := p.grid.Get(key.Day, key.Hour)
	if exists && status.IsLocked() {
		// 锁定格子不是可触达的修改目标，也不标脏
		return
	}

	p.markTouched(key, status, exists)

	switch p.mode {
	case ModePaint:
		if !exists {
			// 已存在的格子保持原状态不变，保证重复绘制幂等
			_ = p.grid.Upsert(key.Day, key.Hour, domain.SlotAvailable)
		}
	case ModeErase:
		if exists && status == domain.SlotAvailable {
			_ = p.grid.Remove(key.Day, key.Hour)
		}
	}
}

func (p *Painter) markTouched(key Key, status domain.SlotStatus, exists bool) {
	if !p.dirty[key] {
		if exists {
			s := status
			p.before[key] = &s
		} else {
			p.before[key] = nil
		}
	}
	p.dirty[key] = true
}

// IsDirty 表示该格子在本次会话中是否被编辑过
func (p *Painter) IsDirty(day, hour int32) bool {
	return p.dirty[Key{Day: day, Hour: hour}]
}

// DirtyKeys 按 (day, hour) 顺序返回所有脏格子
func (p *Painter) DirtyKeys() []Key {
	keys := make([]Key, 0, len(p.dirty))
	for key := range p.dirty {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Day != keys[j].Day {
			return keys[i].Day < keys[j].Day
		}
		return keys[i].Hour < keys[j].Hour
	})

	return keys
}

// Revert 在某个格子的修改持久化失败时，把它恢复到手势开始前的状态，
// 并清除脏标记，使本地状态和服务端确认过的状态保持一致
func (p *Painter) Revert(day, hour int32) {
	key := Key{Day: day, Hour: hour}
	if !p.dirty[key] {
		return
	}

	if previous := p.before[key]; previous != nil {
		_ = p.grid.Restore(domain.TimeSlot{DayOfWeek: key.Day, Hour: key.Hour, Status: *previous})
	} else {
		_ = p.grid.Remove(key.Day, key.Hour)
	}

	delete(p.dirty, key)
	delete(p.before, key)
}

// ClearDirty 在某个格子的修改成功持久化后清除脏标记
func (p *Painter) ClearDirty(day, hour int32) {
	key := Key{Day: day, Hour: hour}
	delete(p.dirty, key)
	delete(p.before, key)
}
