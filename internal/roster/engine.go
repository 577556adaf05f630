package roster

import (
	"context"
	"errors"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
)

var (
	// ErrRosterFull 表示可尝试的职责都没有空位了
	ErrRosterFull = errors.New("该活动的名额已满")
	// ErrAlreadyJoined 表示用户已经在该活动的名单中
	ErrAlreadyJoined = errors.New("您已报名该活动")
	// ErrPositionTaken 表示预定的位置在写入前被其他人抢先占用
	ErrPositionTaken = errors.New("该位置刚刚被其他人占用")
	// ErrNotJoined 表示用户不在该活动的名单中
	ErrNotJoined = errors.New("您未报名该活动")
	// ErrInvalidRole 表示职责和活动模式不匹配
	ErrInvalidRole = errors.New("该活动不支持此职责")
)

// Authority 是名单的权威数据源。本地的找位只是建议性的，
// (eventID, role, position) 和 (eventID, userID) 的唯一性必须由
// 权威方通过原子的"检查并预定"来保证，否则并发报名会互相覆盖。
type Authority interface {
	FetchRoster(ctx context.Context, eventID int64) (*domain.Roster, error)
	ReserveAssignment(ctx context.Context, assignment *domain.RosterAssignment) error
	ReleaseAssignment(ctx context.Context, eventID int64, userID int64) error
}

type Engine struct {
	authority   Authority
	maxAttempts int
}

func NewEngine(authority Authority, maxAttempts int) *Engine {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Engine{
		authority:   authority,
		maxAttempts: maxAttempts,
	}
}

// FindNextAvailablePosition 在 1 到 capacity 之间按从小到大的顺序找出
// 第一个没被占用的位置。位置是唯一整数，因此策略是确定性的，不存在平局。
// 该职责满员时返回 false。
func FindNextAvailablePosition(role domain.RosterRole, assignments []domain.RosterAssignment, capacity int32) (int32, bool) {
	taken := make(map[int32]bool)
	for _, assignment := range assignments {
		if assignment.Role == role {
			taken[assignment.Position] = true
		}
	}

	for position := int32(1); position <= capacity; position++ {
		if !taken[position] {
			return position, true
		}
	}

	return 0, false
}

// FilledCount 统计某个职责已占用的名额数
func FilledCount(role domain.RosterRole, assignments []domain.RosterAssignment) int32 {
	count := int32(0)
	for _, assignment := range assignments {
		if assignment.Role == role {
			count++
		}
	}
	return count
}

// IsFull 判断某个职责是否已满，用于界面上禁用对应的报名按钮
func IsFull(role domain.RosterRole, assignments []domain.RosterAssignment, capacities domain.RosterCapacity) bool {
	return FilledCount(role, assignments) >= capacities[role]
}

// candidateRoles 计算本次报名按顺序尝试的职责：
// 分职责的活动只尝试用户指定的职责；
// 不分职责的活动先尝试队员，队员满了再落到替补。
func candidateRoles(event *domain.Event, preferredRole *domain.RosterRole) ([]domain.RosterRole, error) {
	switch event.Mode {
	case domain.GameModeRoleBased:
		if preferredRole == nil {
			return nil, ErrInvalidRole
		}
		for _, role := range domain.RolesForMode(event.Mode) {
			if role == *preferredRole {
				return []domain.RosterRole{*preferredRole}, nil
			}
		}
		return nil, ErrInvalidRole
	case domain.GameModeGeneric:
		return []domain.RosterRole{domain.RosterRolePlayer, domain.RosterRoleBench}, nil
	default:
		return nil, ErrInvalidRole
	}
}

// Join 为用户报名活动。每次尝试都重新拉取名单、重新找位再向权威方预定；
// 位置被抢时在次数限制内重试，重试耗尽或确实没有空位时返回 ErrRosterFull，
// 绝不静默丢弃报名请求，也不会产生重复的名单项。
func (e *Engine) Join(ctx context.Context, event *domain.Event, userID int64, preferredRole *domain.RosterRole) (*domain.RosterAssignment, error) {
	roles, err := candidateRoles(event, preferredRole)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		roster, err := e.authority.FetchRoster(ctx, event.ID)
		if err != nil {
			return nil, err
		}

		for _, assignment := range roster.Assignments {
			if assignment.UserID == userID {
				return nil, ErrAlreadyJoined
			}
		}

		conflicted := false
		for _, role := range roles {
			position, ok := FindNextAvailablePosition(role, roster.Assignments, roster.Capacities[role])
			if !ok {
				continue
			}

			assignment := &domain.RosterAssignment{
				EventID:  event.ID,
				UserID:   userID,
				Role:     role,
				Position: position,
			}

			err := e.authority.ReserveAssignment(ctx, assignment)
			switch {
			case err == nil:
				return assignment, nil
			case errors.Is(err, ErrPositionTaken):
				// 位置被并发的报名抢走了，重新拉取名单再找位
				conflicted = true
			case errors.Is(err, ErrAlreadyJoined):
				return nil, ErrAlreadyJoined
			default:
				return nil, err
			}

			if conflicted {
				break
			}
		}

		if !conflicted {
			// 所有可尝试的职责都没有空位
			return nil, ErrRosterFull
		}
	}

	return nil, ErrRosterFull
}

// Leave 把用户从活动名单中移除
func (e *Engine) Leave(ctx context.Context, eventID int64, userID int64) error {
	return e.authority.ReleaseAssignment(ctx, eventID, userID)
}
