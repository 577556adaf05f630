package grid

import (
	"errors"
	"sort"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
)

var (
	// ErrSlotLocked 表示试图通过编辑接口修改已确认或被锁定的格子
	ErrSlotLocked = errors.New("该时段已被占用或锁定，无法编辑")
	// ErrOutOfRange 表示格子的坐标不在一周 7x24 的范围内
	ErrOutOfRange = errors.New("时段坐标超出范围")
	// ErrInvalidStatus 表示传入了未定义的格子状态
	ErrInvalidStatus = errors.New("无效的时段状态")
)

type Key struct {
	Day  int32
	Hour int32
}

func (k Key) inRange() bool {
	return k.Day >= 0 && k.Day <= 6 && k.Hour >= 0 && k.Hour <= 23
}

// Grid 是一个用户的一周空闲表，每个 (day, hour) 最多只有一个格子
type Grid struct {
	slots map[Key]domain.SlotStatus
}

func New() *Grid {
	return &Grid{
		slots: make(map[Key]domain.SlotStatus),
	}
}

// FromSlots 从持久化层读出的记录构建空闲表，允许载入任何合法状态
func FromSlots(slots []domain.TimeSlot) (*Grid, error) {
	g := New()
	for _, slot := range slots {
		if err := g.Restore(slot); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Grid) Get(day, hour int32) (domain.SlotStatus, bool) {
	status, exists := g.slots[Key{Day: day, Hour: hour}]
	return status, exists
}

// Upsert 写入一个格子，只允许写入空闲类状态，
// 无论是写入的状态还是已有的状态是锁定的，都会被拒绝
func (g *Grid) Upsert(day, hour int32, status domain.SlotStatus) error {
	key := Key{Day: day, Hour: hour}
	if !key.inRange() {
		return ErrOutOfRange
	}
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	if status.IsLocked() {
		return ErrSlotLocked
	}
	if existing, exists := g.slots[key]; exists && existing.IsLocked() {
		return ErrSlotLocked
	}

	g.slots[key] = status
	return nil
}

// Remove 删除一个格子，锁定状态的格子不允许删除
func (g *Grid) Remove(day, hour int32) error {
	key := Key{Day: day, Hour: hour}
	if !key.inRange() {
		return ErrOutOfRange
	}
	if existing, exists := g.slots[key]; exists && existing.IsLocked() {
		return ErrSlotLocked
	}

	delete(g.slots, key)
	return nil
}

// Restore 绕过编辑限制直接写入格子，仅供持久化层和报名子系统使用
func (g *Grid) Restore(slot domain.TimeSlot) error {
	key := Key{Day: slot.DayOfWeek, Hour: slot.Hour}
	if !key.inRange() {
		return ErrOutOfRange
	}
	if !slot.Status.IsValid() {
		return ErrInvalidStatus
	}

	g.slots[key] = slot.Status
	return nil
}

func (g *Grid) Len() int {
	return len(g.slots)
}

// Slots 按照 (day, hour) 的顺序返回所有格子
func (g *Grid) Slots() []domain.TimeSlot {
	slots := make([]domain.TimeSlot, 0, len(g.slots))
	for key, status := range g.slots {
		slots = append(slots, domain.TimeSlot{
			DayOfWeek: key.Day,
			Hour:      key.Hour,
			Status:    status,
		})
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		return slots[i].Hour < slots[j].Hour
	})

	return slots
}
