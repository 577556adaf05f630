package roster

import (
	"context"
	"errors"
	"testing"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
)

// fakeAuthority 用内存中的名单模拟权威数据源，
// reserveErrs 可以按调用次序注入冲突来模拟并发抢位
type fakeAuthority struct {
	roster      *domain.Roster
	reserveErrs []error
	reserves    int
	fetches     int
}

func (f *fakeAuthority) FetchRoster(ctx context.Context, eventID int64) (*domain.Roster, error) {
	f.fetches++
	copied := &domain.Roster{
		EventID:     f.roster.EventID,
		Capacities:  f.roster.Capacities,
		Assignments: append([]domain.RosterAssignment(nil), f.roster.Assignments...),
	}
	return copied, nil
}

func (f *fakeAuthority) ReserveAssignment(ctx context.Context, assignment *domain.RosterAssignment) error {
	idx := f.reserves
	f.reserves++
	if idx < len(f.reserveErrs) && f.reserveErrs[idx] != nil {
		return f.reserveErrs[idx]
	}

	for _, existing := range f.roster.Assignments {
		if existing.Role == assignment.Role && existing.Position == assignment.Position {
			return ErrPositionTaken
		}
		if existing.UserID == assignment.UserID {
			return ErrAlreadyJoined
		}
	}
	f.roster.Assignments = append(f.roster.Assignments, *assignment)
	return nil
}

func (f *fakeAuthority) ReleaseAssignment(ctx context.Context, eventID int64, userID int64) error {
	for i, existing := range f.roster.Assignments {
		if existing.UserID == userID {
			f.roster.Assignments = append(f.roster.Assignments[:i], f.roster.Assignments[i+1:]...)
			return nil
		}
	}
	return ErrNotJoined
}

func roleBasedEvent(capacities domain.RosterCapacity) *domain.Event {
	return &domain.Event{ID: 42, Mode: domain.GameModeRoleBased, Capacities: capacities}
}

func genericEvent(capacities domain.RosterCapacity) *domain.Event {
	return &domain.Event{ID: 42, Mode: domain.GameModeGeneric, Capacities: capacities}
}

func rolePtr(r domain.RosterRole) *domain.RosterRole {
	return &r
}

// 对应场景：坦克名额为 2，1 号位已被占，下一个可用位置是 2
func TestFindNextAvailablePosition(t *testing.T) {
	assignments := []domain.RosterAssignment{
		{Role: domain.RosterRoleTank, Position: 1},
	}

	position, ok := FindNextAvailablePosition(domain.RosterRoleTank, assignments, 2)
	if !ok || position != 2 {
		t.Errorf("期望返回位置 2，实际为 (%d, %v)", position, ok)
	}
}

// 对应场景：坦克两个位置都被占时返回满员
func TestFindNextAvailablePositionFull(t *testing.T) {
	assignments := []domain.RosterAssignment{
		{Role: domain.RosterRoleTank, Position: 1},
		{Role: domain.RosterRoleTank, Position: 2},
	}

	if _, ok := FindNextAvailablePosition(domain.RosterRoleTank, assignments, 2); ok {
		t.Error("满员时应该返回 false")
	}
}

func TestFindNextAvailablePositionIgnoresOtherRoles(t *testing.T) {
	assignments := []domain.RosterAssignment{
		{Role: domain.RosterRoleHealer, Position: 1},
	}

	position, ok := FindNextAvailablePosition(domain.RosterRoleTank, assignments, 2)
	if !ok || position != 1 {
		t.Errorf("其他职责的占位不应该影响结果，期望位置 1，实际为 (%d, %v)", position, ok)
	}
}

func TestFindNextAvailablePositionFillsGapFirst(t *testing.T) {
	assignments := []domain.RosterAssignment{
		{Role: domain.RosterRoleDPS, Position: 1},
		{Role: domain.RosterRoleDPS, Position: 3},
	}

	position, ok := FindNextAvailablePosition(domain.RosterRoleDPS, assignments, 4)
	if !ok || position != 2 {
		t.Errorf("应该优先填补最小的空位，期望位置 2，实际为 (%d, %v)", position, ok)
	}
}

func TestJoinRoleBased(t *testing.T) {
	authority := &fakeAuthority{
		roster: &domain.Roster{
			EventID:    42,
			Capacities: domain.RosterCapacity{domain.RosterRoleTank: 2},
			Assignments: []domain.RosterAssignment{
				{EventID: 42, UserID: 7, Role: domain.RosterRoleTank, Position: 1},
			},
		},
	}
	engine := NewEngine(authority, 3)

	assignment, err := engine.Join(context.Background(), roleBasedEvent(authority.roster.Capacities), 8, rolePtr(domain.RosterRoleTank))
	if err != nil {
		t.Fatalf("报名失败: %v", err)
	}
	if assignment.Role != domain.RosterRoleTank || assignment.Position != 2 {
		t.Errorf("期望分到坦克 2 号位，实际为 %s %d", assignment.Role, assignment.Position)
	}
}

func TestJoinGenericFallsBackToBench(t *testing.T) {
	authority := &fakeAuthority{
		roster: &domain.Roster{
			EventID: 42,
			Capacities: domain.RosterCapacity{
				domain.RosterRolePlayer: 1,
				domain.RosterRoleBench:  2,
			},
			Assignments: []domain.RosterAssignment{
				{EventID: 42, UserID: 7, Role: domain.RosterRolePlayer, Position: 1},
			},
		},
	}
	engine := NewEngine(authority, 3)

	assignment, err := engine.Join(context.Background(), genericEvent(authority.roster.Capacities), 8, nil)
	if err != nil {
		t.Fatalf("报名失败: %v", err)
	}
	if assignment.Role != domain.RosterRoleBench || assignment.Position != 1 {
		t.Errorf("队员满了应该落到替补 1 号位，实际为 %s %d", assignment.Role, assignment.Position)
	}
}

func TestJoinRetriesOnPositionConflict(t *testing.T) {
	authority := &fakeAuthority{
		roster: &domain.Roster{
			EventID:    42,
			Capacities: domain.RosterCapacity{domain.RosterRoleDPS: 4},
		},
		// 第一次预定模拟被并发报名抢位，第二次成功
		reserveErrs: []error{ErrPositionTaken},
	}
	engine := NewEngine(authority, 3)

	assignment, err := engine.Join(context.Background(), roleBasedEvent(authority.roster.Capacities), 8, rolePtr(domain.RosterRoleDPS))
	if err != nil {
		t.Fatalf("冲突后重试应该成功: %v", err)
	}
	if assignment == nil || assignment.Role != domain.RosterRoleDPS {
		t.Fatal("重试后应该拿到名单项")
	}
	if authority.fetches != 2 {
		t.Errorf("每次重试前都应该重新拉取名单，期望拉取 2 次，实际为 %d", authority.fetches)
	}
}

func TestJoinBoundedRetriesSurfacesFull(t *testing.T) {
	authority := &fakeAuthority{
		roster: &domain.Roster{
			EventID:    42,
			Capacities: domain.RosterCapacity{domain.RosterRoleDPS: 4},
		},
		reserveErrs: []error{ErrPositionTaken, ErrPositionTaken, ErrPositionTaken},
	}
	engine := NewEngine(authority, 3)

	_, err := engine.Join(context.Background(), roleBasedEvent(authority.roster.Capacities), 8, rolePtr(domain.RosterRoleDPS))
	if !errors.Is(err, ErrRosterFull) {
		t.Errorf("重试次数耗尽后应该返回满员错误，实际为 %v", err)
	}
	if authority.reserves != 3 {
		t.Errorf("重试应该有次数上限，期望预定 3 次，实际为 %d", authority.reserves)
	}
}

func TestJoinFullRole(t *testing.T) {
	authority := &fakeAuthority{
		roster: &domain.Roster{
			EventID:    42,
			Capacities: domain.RosterCapacity{domain.RosterRoleTank: 1},
			Assignments: []domain.RosterAssignment{
				{EventID: 42, UserID: 7, Role: domain.RosterRoleTank, Position: 1},
			},
		},
	}
	engine := NewEngine(authority, 3)

	_, err := engine.Join(context.Background(), roleBasedEvent(authority.roster.Capacities), 8, rolePtr(domain.RosterRoleTank))
	if !errors.Is(err, ErrRosterFull) {
		t.Errorf("职责满员应该返回满员错误，实际为 %v", err)
	}
	if authority.reserves != 0 {
		t.Error("确定满员时不应该再向权威方发起预定")
	}
}

func TestJoinAlreadyJoined(t *testing.T) {
	authority := &fakeAuthority{
		roster: &domain.Roster{
			EventID:    42,
			Capacities: domain.RosterCapacity{domain.RosterRoleTank: 2},
			Assignments: []domain.RosterAssignment{
				{EventID: 42, UserID: 8, Role: domain.RosterRoleTank, Position: 1},
			},
		},
	}
	engine := NewEngine(authority, 3)

	_, err := engine.Join(context.Background(), roleBasedEvent(authority.roster.Capacities), 8, rolePtr(domain.RosterRoleTank))
	if !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("重复报名应该返回已报名错误，实际为 %v", err)
	}
}

func TestJoinRejectsInvalidRole(t *testing.T) {
	authority := &fakeAuthority{
		roster: &domain.Roster{
			EventID:    42,
			Capacities: domain.RosterCapacity{domain.RosterRoleTank: 2},
		},
	}
	engine := NewEngine(authority, 3)

	// 分职责的活动必须指定职责
	if _, err := engine.Join(context.Background(), roleBasedEvent(authority.roster.Capacities), 8, nil); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("缺少职责应该返回无效职责错误，实际为 %v", err)
	}

	// 职责必须属于该活动模式
	if _, err := engine.Join(context.Background(), roleBasedEvent(authority.roster.Capacities), 8, rolePtr(domain.RosterRoleBench)); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("替补不属于分职责活动，应该返回无效职责错误，实际为 %v", err)
	}
}

func TestLeave(t *testing.T) {
	authority := &fakeAuthority{
		roster: &domain.Roster{
			EventID:    42,
			Capacities: domain.RosterCapacity{domain.RosterRoleTank: 2},
			Assignments: []domain.RosterAssignment{
				{EventID: 42, UserID: 8, Role: domain.RosterRoleTank, Position: 1},
			},
		},
	}
	engine := NewEngine(authority, 3)

	if err := engine.Leave(context.Background(), 42, 8); err != nil {
		t.Fatalf("退出名单失败: %v", err)
	}
	if len(authority.roster.Assignments) != 0 {
		t.Error("退出后名单项应该被移除")
	}

	if err := engine.Leave(context.Background(), 42, 8); !errors.Is(err, ErrNotJoined) {
		t.Errorf("未报名时退出应该返回未报名错误，实际为 %v", err)
	}
}

func TestFilledCountAndIsFull(t *testing.T) {
	capacities := domain.RosterCapacity{
		domain.RosterRoleTank:   2,
		domain.RosterRoleHealer: 1,
	}
	assignments := []domain.RosterAssignment{
		{Role: domain.RosterRoleTank, Position: 1},
		{Role: domain.RosterRoleHealer, Position: 1},
	}

	if got := FilledCount(domain.RosterRoleTank, assignments); got != 1 {
		t.Errorf("坦克已占名额期望为 1，实际为 %d", got)
	}
	if IsFull(domain.RosterRoleTank, assignments, capacities) {
		t.Error("坦克还有空位，不应该判定为满员")
	}
	if !IsFull(domain.RosterRoleHealer, assignments, capacities) {
		t.Error("治疗没有空位了，应该判定为满员")
	}
}
