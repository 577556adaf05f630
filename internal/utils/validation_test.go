package utils

import (
	"testing"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
)

func TestValidateEventBlocks(t *testing.T) {
	blocks := []domain.EventBlock{
		{DayOfWeek: 1, StartHour: 19.5, EndHour: 22},
		{DayOfWeek: 2, StartHour: 20, EndHour: 23},
	}
	if err := ValidateEventBlocks(blocks); err != nil {
		t.Errorf("合法的时间段不应该返回错误: %v", err)
	}

	if err := ValidateEventBlocks(nil); err == nil {
		t.Error("没有时间段的活动应该返回错误")
	}

	bad := []domain.EventBlock{{DayOfWeek: 7, StartHour: 10, EndHour: 12}}
	if err := ValidateEventBlocks(bad); err == nil {
		t.Error("星期编号越界应该返回错误")
	}

	bad = []domain.EventBlock{{DayOfWeek: 1, StartHour: 12, EndHour: 12}}
	if err := ValidateEventBlocks(bad); err == nil {
		t.Error("结束时间等于开始时间应该返回错误")
	}

	overlapping := []domain.EventBlock{
		{DayOfWeek: 3, StartHour: 19, EndHour: 22},
		{DayOfWeek: 3, StartHour: 21, EndHour: 23},
	}
	if err := ValidateEventBlocks(overlapping); err == nil {
		t.Error("同一天内重叠的时间段应该返回错误")
	}
}

func TestValidateCapacities(t *testing.T) {
	capacities := domain.RosterCapacity{
		domain.RosterRoleTank:   2,
		domain.RosterRoleHealer: 4,
		domain.RosterRoleDPS:    14,
	}
	if err := ValidateCapacities(domain.GameModeRoleBased, capacities); err != nil {
		t.Errorf("合法的名额设置不应该返回错误: %v", err)
	}

	if err := ValidateCapacities(domain.GameModeGeneric, capacities); err == nil {
		t.Error("不分职责的活动不应该允许坦克名额")
	}

	if err := ValidateCapacities(domain.GameModeRoleBased, domain.RosterCapacity{}); err == nil {
		t.Error("空的名额设置应该返回错误")
	}

	zero := domain.RosterCapacity{domain.RosterRoleTank: 0}
	if err := ValidateCapacities(domain.GameModeRoleBased, zero); err == nil {
		t.Error("名额为 0 应该返回错误")
	}
}

func TestValidateRosterAssignments(t *testing.T) {
	capacities := domain.RosterCapacity{
		domain.RosterRoleTank: 2,
		domain.RosterRoleDPS:  3,
	}

	assignments := []domain.RosterAssignment{
		{UserID: 1, Role: domain.RosterRoleTank, Position: 1},
		{UserID: 2, Role: domain.RosterRoleTank, Position: 2},
		{UserID: 3, Role: domain.RosterRoleDPS, Position: 1},
	}
	if err := ValidateRosterAssignments(assignments, capacities); err != nil {
		t.Errorf("合法的名单不应该返回错误: %v", err)
	}

	outOfRange := []domain.RosterAssignment{
		{UserID: 1, Role: domain.RosterRoleTank, Position: 3},
	}
	if err := ValidateRosterAssignments(outOfRange, capacities); err == nil {
		t.Error("位置超出名额范围应该返回错误")
	}

	duplicatePosition := []domain.RosterAssignment{
		{UserID: 1, Role: domain.RosterRoleDPS, Position: 1},
		{UserID: 2, Role: domain.RosterRoleDPS, Position: 1},
	}
	if err := ValidateRosterAssignments(duplicatePosition, capacities); err == nil {
		t.Error("位置被重复占用应该返回错误")
	}

	duplicateUser := []domain.RosterAssignment{
		{UserID: 1, Role: domain.RosterRoleTank, Position: 1},
		{UserID: 1, Role: domain.RosterRoleDPS, Position: 1},
	}
	if err := ValidateRosterAssignments(duplicateUser, capacities); err == nil {
		t.Error("同一用户出现多次应该返回错误")
	}

	unknownRole := []domain.RosterAssignment{
		{UserID: 1, Role: domain.RosterRoleHealer, Position: 1},
	}
	if err := ValidateRosterAssignments(unknownRole, capacities); err == nil {
		t.Error("职责不在名额设置中应该返回错误")
	}
}
