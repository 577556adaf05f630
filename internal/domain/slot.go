package domain

// SlotStatus 表示一周空闲表中单个小时格子的状态
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available" // 用户自己标记的空闲时间
	SlotCommitted SlotStatus = "committed" // 已确认的活动报名占用，用户不可编辑
	SlotBlocked   SlotStatus = "blocked"   // 外部策略锁定，用户不可编辑
	SlotFreed     SlotStatus = "freed"     // 报名取消后释放回来的时段，和空闲一样可编辑
)

func (s SlotStatus) IsValid() bool {
	switch s {
	case SlotAvailable, SlotCommitted, SlotBlocked, SlotFreed:
		return true
	default:
		return false
	}
}

// IsLocked 表示该状态是否禁止用户通过画格子的方式修改
func (s SlotStatus) IsLocked() bool {
	switch s {
	case SlotCommitted, SlotBlocked:
		return true
	case SlotAvailable, SlotFreed:
		return false
	default:
		return false
	}
}

// CountsAsAvailable 表示该状态在统计空闲热力图时是否算作空闲
func (s SlotStatus) CountsAsAvailable() bool {
	switch s {
	case SlotAvailable, SlotFreed:
		return true
	case SlotCommitted, SlotBlocked:
		return false
	default:
		return false
	}
}

type TimeSlot struct {
	DayOfWeek int32      `json:"dayOfWeek"` // 0 表示星期日
	Hour      int32      `json:"hour"`
	Status    SlotStatus `json:"status"`
}

// AvailabilityEdit 表示一次格子编辑的持久化请求，
// Removed 为 true 时表示删除该格子，此时忽略 Status
type AvailabilityEdit struct {
	DayOfWeek int32      `json:"dayOfWeek"`
	Hour      int32      `json:"hour"`
	Status    SlotStatus `json:"status,omitempty"`
	Removed   bool       `json:"removed,omitempty"`
}
