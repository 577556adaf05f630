package domain

import "time"

// RosterRole 表示活动名单中的职责
type RosterRole string

const (
	RosterRoleTank   RosterRole = "tank"
	RosterRoleHealer RosterRole = "healer"
	RosterRoleDPS    RosterRole = "dps"
	RosterRoleFlex   RosterRole = "flex"
	RosterRolePlayer RosterRole = "player"
	RosterRoleBench  RosterRole = "bench"
)

func (r RosterRole) IsValid() bool {
	switch r {
	case RosterRoleTank, RosterRoleHealer, RosterRoleDPS, RosterRoleFlex, RosterRolePlayer, RosterRoleBench:
		return true
	default:
		return false
	}
}

// RolesForMode 返回某个活动模式下允许出现的职责集合
func RolesForMode(mode GameMode) []RosterRole {
	switch mode {
	case GameModeRoleBased:
		return []RosterRole{RosterRoleTank, RosterRoleHealer, RosterRoleDPS, RosterRoleFlex}
	case GameModeGeneric:
		return []RosterRole{RosterRolePlayer, RosterRoleBench}
	default:
		return nil
	}
}

// RosterCapacity 表示每个职责的名额上限，只允许出现正数
type RosterCapacity map[RosterRole]int32

type RosterAssignment struct {
	ID        int64      `json:"id"`
	EventID   int64      `json:"eventID"`
	UserID    int64      `json:"userID"`
	Role      RosterRole `json:"role"`
	Position  int32      `json:"position"` // 1 到该职责的名额上限
	CreatedAt time.Time  `json:"createdAt"`
}

type Roster struct {
	EventID     int64              `json:"eventID"`
	Capacities  RosterCapacity     `json:"capacities"`
	Assignments []RosterAssignment `json:"assignments"`
}
