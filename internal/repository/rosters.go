package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/roster"
)

// FetchRoster 读取活动的名额上限和当前名单，实现 roster.Authority
func (r *Repository) FetchRoster(ctx context.Context, eventID int64) (*domain.Roster, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result := &domain.Roster{
		EventID:     eventID,
		Capacities:  make(domain.RosterCapacity),
		Assignments: make([]domain.RosterAssignment, 0),
	}

	query := `
		SELECT role, capacity FROM event_capacities WHERE event_id = $1
	`
	capRows, err := r.dbpool.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer capRows.Close()

	for capRows.Next() {
		var role domain.RosterRole
		var capacity int32
		if err := capRows.Scan(&role, &capacity); err != nil {
			return nil, err
		}
		result.Capacities[role] = capacity
	}
	if err := capRows.Err(); err != nil {
		return nil, err
	}

	query = `
		SELECT id, user_id, role, position, created_at
		FROM roster_assignments
		WHERE event_id = $1
		ORDER BY role, position
	`
	rows, err := r.dbpool.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		assignment := domain.RosterAssignment{EventID: eventID}
		if err := rows.Scan(&assignment.ID, &assignment.UserID, &assignment.Role, &assignment.Position, &assignment.CreatedAt); err != nil {
			return nil, err
		}
		result.Assignments = append(result.Assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ReserveAssignment 原子地预定一个名单位置，实现 roster.Authority。
// (event_id, role, position) 和 (event_id, user_id) 的唯一约束是最终仲裁，
// 引擎本地的找位只是建议，被抢位时这里会返回对应的哨兵错误供引擎重试。
func (r *Repository) ReserveAssignment(ctx context.Context, assignment *domain.RosterAssignment) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO roster_assignments (event_id, user_id, role, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	args := []any{assignment.EventID, assignment.UserID, assignment.Role, assignment.Position}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&assignment.ID, &assignment.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.ConstraintName {
			case "roster_assignments_event_id_role_position_key":
				return roster.ErrPositionTaken
			case "roster_assignments_event_id_user_id_key":
				return roster.ErrAlreadyJoined
			}
		}
		return err
	}

	return nil
}

// ReleaseAssignment 把用户从名单中移除，实现 roster.Authority
func (r *Repository) ReleaseAssignment(ctx context.Context, eventID int64, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM roster_assignments
		WHERE event_id = $1 AND user_id = $2
		RETURNING id
	`

	var id int64
	if err := r.dbpool.QueryRowContext(ctx, query, eventID, userID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return roster.ErrNotJoined
		}
		return err
	}

	return nil
}

// ReleaseAllAssignments 在活动取消时清空整个名单，返回被移除的名单项
func (r *Repository) ReleaseAllAssignments(eventID int64) ([]domain.RosterAssignment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM roster_assignments
		WHERE event_id = $1
		RETURNING id, user_id, role, position, created_at
	`

	rows, err := r.dbpool.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]domain.RosterAssignment, 0)
	for rows.Next() {
		assignment := domain.RosterAssignment{EventID: eventID}
		if err := rows.Scan(&assignment.ID, &assignment.UserID, &assignment.Role, &assignment.Position, &assignment.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}
