package domain

import "time"

// GameMode 决定活动名单使用哪一组职责
type GameMode string

const (
	GameModeRoleBased GameMode = "role_based" // 需要分坦克/治疗/输出的活动
	GameModeGeneric   GameMode = "generic"    // 不区分职责的活动，只有队员和替补
)

func (m GameMode) IsValid() bool {
	switch m {
	case GameModeRoleBased, GameModeGeneric:
		return true
	default:
		return false
	}
}

// EventBlock 表示活动在某一天内的一段时间，跨天的活动会被拆成多个 block
// 注意 block 的 DayOfWeek 采用星期一为 0 的编号方式，和空闲表的编号不同
type EventBlock struct {
	ID        int64   `json:"id"`
	DayOfWeek int32   `json:"dayOfWeek"`
	StartHour float64 `json:"startHour"` // 允许半点开场，例如 20.5 表示 20:30
	EndHour   float64 `json:"endHour"`
	Note      string  `json:"note"`
}

type Event struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Mode        GameMode       `json:"mode"`
	Capacities  RosterCapacity `json:"capacities"`
	Blocks      []EventBlock   `json:"blocks"`
	CreatedBy   int64          `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	Version     int32          `json:"-"`
}
