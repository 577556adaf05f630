package utils

import (
	"fmt"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
)

// ValidateEventBlocks 检查活动时间段的时间范围和相互之间的冲突
func ValidateEventBlocks(blocks []domain.EventBlock) error {
	if len(blocks) == 0 {
		return fmt.Errorf("活动至少需要一个时间段")
	}

	for i, block := range blocks {
		if block.DayOfWeek < 0 || block.DayOfWeek > 6 {
			return fmt.Errorf("时间段 %d 的星期编号无效", i+1)
		}
		if block.StartHour < 0 || block.EndHour > 24 {
			return fmt.Errorf("时间段 %d 超出了一天的范围", i+1)
		}
		if block.EndHour <= block.StartHour {
			return fmt.Errorf("时间段 %d 的结束时间不能早于开始时间", i+1)
		}
	}

	// 同一天内的时间段不允许重叠
	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			if blocks[i].DayOfWeek != blocks[j].DayOfWeek {
				continue
			}
			if blocks[i].StartHour < blocks[j].EndHour && blocks[j].StartHour < blocks[i].EndHour {
				return fmt.Errorf("时间段 %d 和时间段 %d 之间的时间冲突", i+1, j+1)
			}
		}
	}

	return nil
}

// ValidateCapacities 检查名额设置和活动模式是否匹配
func ValidateCapacities(mode domain.GameMode, capacities domain.RosterCapacity) error {
	allowed := domain.RolesForMode(mode)
	if allowed == nil {
		return fmt.Errorf("无效的活动模式")
	}

	if len(capacities) == 0 {
		return fmt.Errorf("活动至少需要设置一个职责的名额")
	}

	for role, capacity := range capacities {
		found := false
		for _, a := range allowed {
			if a == role {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("职责 %s 不属于该活动模式", role)
		}
		if capacity < 1 {
			return fmt.Errorf("职责 %s 的名额必须为正数", role)
		}
	}

	return nil
}

// ValidateRosterAssignments 检查名单项的位置边界和重复占用，
// 用于校验运营人员手工导入的名单
func ValidateRosterAssignments(assignments []domain.RosterAssignment, capacities domain.RosterCapacity) error {
	seenPosition := make(map[domain.RosterRole]map[int32]bool)
	seenUser := make(map[int64]bool)

	for i, assignment := range assignments {
		capacity, exists := capacities[assignment.Role]
		if !exists {
			return fmt.Errorf("第 %d 项的职责 %s 不在名额设置中", i+1, assignment.Role)
		}

		if assignment.Position < 1 || assignment.Position > capacity {
			return fmt.Errorf("第 %d 项的位置超出了职责 %s 的名额范围", i+1, assignment.Role)
		}

		if seenPosition[assignment.Role] == nil {
			seenPosition[assignment.Role] = make(map[int32]bool)
		}
		if seenPosition[assignment.Role][assignment.Position] {
			return fmt.Errorf("职责 %s 的位置 %d 被重复占用", assignment.Role, assignment.Position)
		}
		seenPosition[assignment.Role][assignment.Position] = true

		if seenUser[assignment.UserID] {
			return fmt.Errorf("id 为 %d 的用户在名单中出现了多次", assignment.UserID)
		}
		seenUser[assignment.UserID] = true
	}

	return nil
}
